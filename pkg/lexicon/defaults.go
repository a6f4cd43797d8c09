package lexicon

import "github.com/qubicDB/emocore/pkg/core"

// defaultKeywords is the built-in lexicon. Retraining only grows it.
var defaultKeywords = map[core.Emotion]map[string]float64{
	core.Happy: {
		"happy": 1.0, "glad": 0.9, "joy": 1.0, "joyful": 1.0, "cheerful": 0.9,
		"delighted": 1.0, "pleased": 0.8, "smile": 0.7, "wonderful": 0.8,
		"great": 0.6, "awesome": 0.8, "love": 0.8, "fun": 0.7, "content": 0.6,
	},
	core.Sad: {
		"sad": 1.0, "unhappy": 1.0, "depressed": 1.2, "miserable": 1.1,
		"heartbroken": 1.3, "cry": 0.9, "crying": 0.9, "tears": 0.8, "upset": 0.8,
		"gloomy": 0.9, "grief": 1.2, "disappointed": 0.8, "hurt": 0.7,
	},
	core.Angry: {
		"angry": 1.0, "mad": 0.9, "furious": 1.3, "annoyed": 0.8, "irritated": 0.8,
		"infuriating": 0.9, "frustrated": 0.9, "hate": 1.0, "rage": 1.3,
		"outraged": 1.2, "pissed": 1.0, "livid": 1.3,
	},
	core.Fearful: {
		"afraid": 1.0, "scared": 1.0, "terrified": 1.3, "fear": 1.0,
		"frightened": 1.1, "panic": 1.1, "horror": 1.1, "dread": 1.0,
	},
	core.Disgusted: {
		"disgusted": 1.1, "disgusting": 1.0, "gross": 0.9, "revolting": 1.1,
		"nasty": 0.8, "repulsive": 1.1, "vile": 1.0, "yuck": 0.9,
	},
	core.Surprised: {
		"surprised": 1.0, "shocked": 1.0, "amazed": 0.9, "astonished": 1.1,
		"wow": 0.8, "unexpected": 0.8, "stunned": 1.0, "whoa": 0.7,
	},
	core.Confused: {
		"confused": 1.0, "puzzled": 0.9, "unsure": 0.7, "unclear": 0.7,
		"baffled": 1.0, "perplexed": 1.0, "confusing": 0.9,
	},
	core.Interested: {
		"interested": 1.0, "curious": 1.0, "fascinated": 1.1, "intrigued": 1.0,
		"interesting": 0.8, "explore": 0.6, "learn": 0.5,
	},
	core.Excited: {
		"excited": 1.0, "thrilled": 1.2, "pumped": 1.0, "eager": 0.9,
		"exciting": 0.9, "hyped": 1.0, "stoked": 1.0,
	},
	core.Anxious: {
		"anxious": 1.0, "worried": 1.0, "nervous": 1.0, "stressed": 1.0,
		"stress": 0.9, "tense": 0.8, "uneasy": 0.8, "overwhelmed": 1.0,
		"anxiety": 1.1, "worry": 0.9, "deadline": 0.5,
	},
	core.Calm: {
		"calm": 1.0, "relaxed": 1.0, "peaceful": 1.0, "serene": 1.1,
		"chill": 0.7, "tranquil": 1.1, "relaxing": 0.9, "rested": 0.7,
	},
	core.Tired: {
		"tired": 1.0, "exhausted": 1.2, "sleepy": 0.9, "drained": 1.0,
		"fatigued": 1.1, "weary": 1.0, "burnout": 1.1,
	},
	core.Bored: {
		"bored": 1.0, "boring": 0.9, "dull": 0.8, "tedious": 0.9,
		"monotonous": 0.9, "meh": 0.6, "uninterested": 0.9,
	},
	core.Grateful: {
		"grateful": 1.1, "thankful": 1.1, "thanks": 0.8, "thank": 0.8,
		"appreciate": 1.0, "appreciated": 0.9, "blessed": 0.9,
	},
	core.Hopeful: {
		"hopeful": 1.0, "hope": 0.8, "optimistic": 1.0, "promising": 0.8,
		"wish": 0.6, "confident": 0.7,
	},
	core.Lonely: {
		"lonely": 1.1, "alone": 0.9, "isolated": 1.0, "lonesome": 1.1,
		"abandoned": 1.0, "ignored": 0.8, "miss": 0.7,
	},
	core.Proud: {
		"proud": 1.1, "accomplished": 1.0, "achievement": 0.9, "achieved": 0.9,
		"succeeded": 0.9, "pride": 1.0, "nailed": 0.8, "promoted": 0.9,
	},
	core.Embarrassed: {
		"embarrassed": 1.1, "ashamed": 1.1, "awkward": 0.9, "humiliated": 1.2,
		"embarrassing": 1.0, "cringe": 0.9, "mortified": 1.2,
	},
	core.Neutral: {
		"okay": 0.4, "ok": 0.4, "fine": 0.4, "alright": 0.4, "normal": 0.4,
		"whatever": 0.3,
	},
}

var defaultPhrases = map[core.Emotion][]core.Phrase{
	core.Happy: {
		{Words: []string{"on", "cloud", "nine"}, Weight: 1.2},
		{Words: []string{"over", "the", "moon"}, Weight: 1.2},
		{Words: []string{"made", "my", "day"}, Weight: 1.0},
	},
	core.Sad: {
		{Words: []string{"feel", "down"}, Weight: 0.9},
		{Words: []string{"broke", "my", "heart"}, Weight: 1.2},
		{Words: []string{"down", "in", "the", "dumps"}, Weight: 1.1},
	},
	core.Angry: {
		{Words: []string{"infuriating", "to", "deal", "with"}, Weight: 1.2},
		{Words: []string{"fed", "up"}, Weight: 1.0},
		{Words: []string{"drives", "me", "crazy"}, Weight: 1.0},
		{Words: []string{"sick", "of"}, Weight: 0.9},
	},
	core.Fearful: {
		{Words: []string{"scared", "to", "death"}, Weight: 1.2},
		{Words: []string{"freaking", "out"}, Weight: 1.0},
	},
	core.Disgusted: {
		{Words: []string{"makes", "me", "sick"}, Weight: 1.1},
		{Words: []string{"grossed", "out"}, Weight: 1.0},
	},
	core.Surprised: {
		{Words: []string{"did", "not", "expect"}, Weight: 0.9},
		{Words: []string{"out", "of", "nowhere"}, Weight: 0.8},
	},
	core.Confused: {
		{Words: []string{"makes", "no", "sense"}, Weight: 1.1},
		{Words: []string{"don't", "understand"}, Weight: 1.0},
		{Words: []string{"not", "sure"}, Weight: 0.8},
	},
	core.Interested: {
		{Words: []string{"want", "to", "learn"}, Weight: 0.9},
		{Words: []string{"tell", "me", "more"}, Weight: 1.0},
	},
	core.Excited: {
		{Words: []string{"can't", "wait"}, Weight: 1.2},
		{Words: []string{"looking", "forward"}, Weight: 1.0},
	},
	core.Anxious: {
		{Words: []string{"on", "edge"}, Weight: 1.0},
		{Words: []string{"can't", "stop", "worrying"}, Weight: 1.1},
	},
	core.Calm: {
		{Words: []string{"at", "peace"}, Weight: 1.1},
		{Words: []string{"under", "control"}, Weight: 0.8},
	},
	core.Tired: {
		{Words: []string{"worn", "out"}, Weight: 1.1},
		{Words: []string{"burnt", "out"}, Weight: 1.1},
		{Words: []string{"need", "sleep"}, Weight: 0.9},
	},
	core.Bored: {
		{Words: []string{"nothing", "to", "do"}, Weight: 1.0},
	},
	core.Grateful: {
		{Words: []string{"thank", "you"}, Weight: 1.0},
		{Words: []string{"means", "a", "lot"}, Weight: 1.0},
	},
	core.Hopeful: {
		{Words: []string{"things", "will", "get", "better"}, Weight: 1.1},
		{Words: []string{"fingers", "crossed"}, Weight: 1.0},
	},
	core.Lonely: {
		{Words: []string{"no", "one"}, Weight: 0.8},
		{Words: []string{"by", "myself"}, Weight: 0.8},
	},
	core.Proud: {
		{Words: []string{"proud", "of"}, Weight: 1.0},
		{Words: []string{"did", "it"}, Weight: 0.8},
	},
	core.Embarrassed: {
		{Words: []string{"want", "to", "hide"}, Weight: 0.9},
	},
	core.Neutral: {
		{Words: []string{"nothing", "much"}, Weight: 0.8},
	},
}

// negationWords flip the next matched keyword.
var negationWords = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "nowhere": {}, "cannot": {}, "can't": {}, "cant": {},
	"don't": {}, "dont": {}, "doesn't": {}, "doesnt": {}, "didn't": {}, "didnt": {},
	"isn't": {}, "isnt": {}, "wasn't": {}, "wasnt": {}, "aren't": {}, "arent": {},
	"weren't": {}, "won't": {}, "wont": {}, "wouldn't": {}, "shouldn't": {},
	"couldn't": {}, "haven't": {}, "hasn't": {}, "hadn't": {}, "ain't": {},
	"hardly": {}, "barely": {}, "scarcely": {}, "without": {},
}

// intensifiers scale the next matched keyword. Factors stay within [0.3, 2.0].
var intensifiers = map[string]float64{
	"extremely": 1.8, "absolutely": 1.8, "incredibly": 1.8, "utterly": 1.8,
	"insanely": 2.0, "completely": 1.6, "deeply": 1.6, "totally": 1.5,
	"very": 1.5, "super": 1.5, "highly": 1.5, "really": 1.4, "truly": 1.4,
	"so": 1.3, "too": 1.3, "quite": 1.2, "pretty": 1.1, "fairly": 0.8,
	"rather": 0.9, "somewhat": 0.6, "kinda": 0.6, "slightly": 0.4,
	"mildly": 0.5, "bit": 0.5, "little": 0.5,
}

// opposites receive a share of a negated keyword's weight.
var opposites = map[core.Emotion][]core.Emotion{
	core.Happy: {core.Sad},
	core.Sad:   {core.Happy},
}

// Negation credit given to the opposite emotion.
const OppositeShare = 0.3

// IsNegation reports whether token is a negation word.
func IsNegation(token string) bool {
	_, ok := negationWords[token]
	return ok
}

// Intensifier returns the modifier factor for token.
func Intensifier(token string) (float64, bool) {
	f, ok := intensifiers[token]
	return f, ok
}

// Opposites returns the emotions that gain credit when e is negated.
func Opposites(e core.Emotion) []core.Emotion {
	return opposites[e]
}

// DefaultDocument returns a fresh copy of the built-in lexicon.
func DefaultDocument() core.LexiconDocument {
	doc := core.LexiconDocument{
		Keywords: make(map[core.Emotion]map[string]float64, len(defaultKeywords)),
		Phrases:  make(map[core.Emotion][]core.Phrase, len(defaultPhrases)),
	}
	for e, kws := range defaultKeywords {
		m := make(map[string]float64, len(kws))
		for k, w := range kws {
			m[k] = w
		}
		doc.Keywords[e] = m
	}
	for e, ps := range defaultPhrases {
		doc.Phrases[e] = clonePhrases(ps)
	}
	return doc
}

// DefaultKeywordCount returns the built-in keyword count for e.
func DefaultKeywordCount(e core.Emotion) int {
	return len(defaultKeywords[e])
}

func clonePhrases(ps []core.Phrase) []core.Phrase {
	out := make([]core.Phrase, len(ps))
	for i, p := range ps {
		out[i] = core.Phrase{Words: append([]string(nil), p.Words...), Weight: p.Weight}
	}
	return out
}
