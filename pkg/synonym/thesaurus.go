package synonym

import "github.com/qubicDB/emocore/pkg/core"

// builtinSynsets is a compact emotion thesaurus. A synset tagged with an
// emotion only expands keywords looked up under that emotion; untagged
// synsets expand under any hint.
var builtinSynsets = []Synset{
	// happy
	{Emotion: core.Happy, Words: []string{"happy", "glad", "joyful", "elated", "ecstatic", "overjoyed", "blissful", "jubilant"}},
	{Emotion: core.Happy, Words: []string{"glad", "pleased", "gratified", "chuffed"}},
	{Emotion: core.Happy, Words: []string{"cheerful", "merry", "upbeat", "sunny", "jolly"}},
	{Emotion: core.Happy, Words: []string{"wonderful", "fantastic", "marvelous", "terrific", "superb"}},

	// sad
	{Emotion: core.Sad, Words: []string{"sad", "unhappy", "sorrowful", "melancholy", "blue", "downcast", "dejected"}},
	{Emotion: core.Sad, Words: []string{"depressed", "despondent", "hopeless", "despairing"}},
	{Emotion: core.Sad, Words: []string{"miserable", "wretched", "forlorn", "woeful"}},
	{Emotion: core.Sad, Words: []string{"grief", "sorrow", "mourning", "heartache"}},
	{Emotion: core.Sad, Words: []string{"cry", "weep", "sob", "bawl"}},

	// angry
	{Emotion: core.Angry, Words: []string{"angry", "irate", "enraged", "incensed", "fuming", "seething"}},
	{Emotion: core.Angry, Words: []string{"mad", "furious", "irate", "livid"}},
	{Emotion: core.Angry, Words: []string{"annoyed", "irritated", "aggravated", "exasperated", "vexed"}},
	{Emotion: core.Angry, Words: []string{"infuriating", "maddening", "enraging", "exasperating"}},

	// fearful
	{Emotion: core.Fearful, Words: []string{"afraid", "scared", "frightened", "fearful", "spooked"}},
	{Emotion: core.Fearful, Words: []string{"terrified", "petrified", "horrified", "panicked"}},
	{Emotion: core.Fearful, Words: []string{"fear", "dread", "terror", "fright"}},

	// disgusted
	{Emotion: core.Disgusted, Words: []string{"disgusted", "repulsed", "revolted", "sickened", "appalled"}},
	{Emotion: core.Disgusted, Words: []string{"disgusting", "revolting", "repulsive", "vile", "foul", "nauseating"}},
	{Emotion: core.Disgusted, Words: []string{"gross", "icky", "yucky"}},

	// surprised
	{Emotion: core.Surprised, Words: []string{"surprised", "astonished", "astounded", "startled", "flabbergasted"}},
	{Emotion: core.Surprised, Words: []string{"shocked", "stunned", "staggered", "dumbfounded"}},
	{Emotion: core.Surprised, Words: []string{"unexpected", "unforeseen", "sudden"}},

	// confused
	{Emotion: core.Confused, Words: []string{"confused", "puzzled", "baffled", "bewildered", "perplexed", "mystified"}},
	{Emotion: core.Confused, Words: []string{"unsure", "uncertain", "doubtful"}},

	// interested
	{Emotion: core.Interested, Words: []string{"interested", "curious", "intrigued", "inquisitive"}},
	{Emotion: core.Interested, Words: []string{"fascinated", "captivated", "absorbed", "engrossed"}},

	// excited
	{Emotion: core.Excited, Words: []string{"excited", "thrilled", "exhilarated", "enthusiastic", "psyched"}},
	{Emotion: core.Excited, Words: []string{"eager", "keen", "raring"}},

	// anxious
	{Emotion: core.Anxious, Words: []string{"anxious", "worried", "apprehensive", "jittery", "restless"}},
	{Emotion: core.Anxious, Words: []string{"nervous", "jumpy", "edgy", "twitchy"}},
	{Emotion: core.Anxious, Words: []string{"stressed", "strained", "frazzled", "pressured"}},
	{Emotion: core.Anxious, Words: []string{"overwhelmed", "swamped", "overloaded"}},

	// calm
	{Emotion: core.Calm, Words: []string{"calm", "tranquil", "serene", "placid", "composed"}},
	{Emotion: core.Calm, Words: []string{"relaxed", "mellow", "unwound", "laidback"}},
	{Emotion: core.Calm, Words: []string{"peaceful", "restful", "quiet", "soothing"}},

	// tired
	{Emotion: core.Tired, Words: []string{"tired", "weary", "fatigued", "drowsy", "sleepy"}},
	{Emotion: core.Tired, Words: []string{"exhausted", "drained", "depleted", "knackered"}},

	// bored
	{Emotion: core.Bored, Words: []string{"bored", "uninterested", "listless", "restive"}},
	{Emotion: core.Bored, Words: []string{"boring", "dull", "tedious", "monotonous", "humdrum", "dreary"}},

	// grateful
	{Emotion: core.Grateful, Words: []string{"grateful", "thankful", "appreciative", "obliged", "indebted"}},
	{Emotion: core.Grateful, Words: []string{"appreciate", "treasure", "cherish"}},

	// hopeful
	{Emotion: core.Hopeful, Words: []string{"hopeful", "optimistic", "positive", "sanguine", "upbeat"}},
	{Emotion: core.Hopeful, Words: []string{"promising", "encouraging", "auspicious"}},

	// lonely
	{Emotion: core.Lonely, Words: []string{"lonely", "lonesome", "friendless", "solitary"}},
	{Emotion: core.Lonely, Words: []string{"isolated", "secluded", "cutoff", "excluded"}},
	{Emotion: core.Lonely, Words: []string{"abandoned", "deserted", "forsaken", "neglected"}},

	// proud
	{Emotion: core.Proud, Words: []string{"proud", "gratified", "triumphant", "fulfilled"}},
	{Emotion: core.Proud, Words: []string{"accomplished", "achieved", "succeeded", "attained"}},

	// embarrassed
	{Emotion: core.Embarrassed, Words: []string{"embarrassed", "ashamed", "mortified", "sheepish", "abashed"}},
	{Emotion: core.Embarrassed, Words: []string{"humiliated", "shamed", "disgraced"}},
	{Emotion: core.Embarrassed, Words: []string{"awkward", "uncomfortable", "cringey"}},

	// untagged senses
	{Words: []string{"okay", "ok", "alright", "fine", "acceptable"}},
}

// builtinAssociations are curated, domain-specific related words keyed by
// emotion and source keyword. They carry everyday situations a thesaurus
// does not list.
var builtinAssociations = map[core.Emotion]map[string][]string{
	core.Happy: {
		"smile": {"laugh", "laughing", "lol", "haha"},
		"fun":   {"party", "celebrate", "celebrating"},
	},
	core.Sad: {
		"grief": {"funeral", "loss", "bereavement"},
		"cry":   {"crying", "tearful"},
	},
	core.Angry: {
		"annoyed": {"rude", "unfair", "traffic"},
		"hate":    {"loathe", "despise", "detest"},
	},
	core.Fearful: {
		"scared": {"nightmare", "creepy", "haunted"},
	},
	core.Disgusted: {
		"gross": {"mold", "rotten", "vomit"},
	},
	core.Surprised: {
		"shocked": {"unbelievable", "suddenly"},
	},
	core.Confused: {
		"confused": {"huh", "lost"},
	},
	core.Interested: {
		"curious": {"research", "documentary", "wondering"},
	},
	core.Excited: {
		"thrilled": {"vacation", "trip", "concert"},
	},
	core.Anxious: {
		"deadline": {"exam", "interview", "bills", "presentation"},
		"worried":  {"uncertainty", "diagnosis"},
	},
	core.Calm: {
		"relaxed": {"meditation", "yoga", "breathe", "beach"},
	},
	core.Tired: {
		"exhausted": {"insomnia", "overtime", "nap"},
	},
	core.Bored: {
		"boring": {"waiting", "queue", "lecture"},
	},
	core.Grateful: {
		"thanks": {"thx", "ty", "cheers"},
	},
	core.Hopeful: {
		"promising": {"opportunity", "chance", "someday"},
	},
	core.Lonely: {
		"miss": {"missing", "homesick"},
	},
	core.Proud: {
		"promoted":    {"promotion", "raise", "graduated", "graduation"},
		"achievement": {"milestone", "award", "trophy"},
	},
	core.Embarrassed: {
		"awkward": {"blush", "blushing", "oops"},
	},
}
