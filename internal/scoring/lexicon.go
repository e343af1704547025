package scoring

var greetingPhrases = []string{
	"thank you for calling",
	"thanks for calling",
	"welcome to",
	"good morning",
	"good afternoon",
	"good evening",
	"how can i help",
	"how may i help",
	"how can i assist",
	"how may i assist",
	"my name is",
}

var closingPhrases = []string{
	"anything else",
	"is there anything",
	"have a great day",
	"have a nice day",
	"have a good day",
	"thank you for your time",
	"thanks for your time",
	"take care",
}

var courtesyPhrases = []string{
	"please",
	"thank you",
	"thanks",
	"appreciate",
	"my pleasure",
	"you're welcome",
	"happy to help",
	"glad to help",
	"of course",
	"absolutely",
}

var empathyPhrases = []string{
	"i understand",
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"sorry to hear",
	"i can imagine",
	"that must be",
	"i hear you",
	"completely understand",
	"that sounds frustrating",
}

var problemSolvingPhrases = []string{
	"let me",
	"i can help",
	"i will",
	"i'll",
	"we can",
	"solution",
	"resolve",
	"fix",
	"look into",
	"take care of",
	"option",
	"next step",
	"what i can do",
}

var productPhrases = []string{
	"plan",
	"policy",
	"coverage",
	"pricing",
	"price",
	"rate",
	"benefit",
	"benefits",
	"feature",
	"quote",
	"premium",
	"deductible",
	"package",
	"warranty",
	"offer",
	"eligible",
}

// negativeAgentPhrases are penalized wherever they appear in agent speech.
var negativeAgentPhrases = []string{
	"i don't know",
	"not my problem",
	"calm down",
	"can't help you",
	"whatever",
	"not my job",
	"you need to listen",
}

var fillerWords = map[string]struct{}{
	"um": {}, "umm": {}, "uh": {}, "uhm": {}, "erm": {}, "er": {}, "ah": {}, "hmm": {},
}

var positiveWords = map[string]struct{}{
	"thank": {}, "thanks": {}, "great": {}, "good": {}, "happy": {}, "glad": {},
	"appreciate": {}, "excellent": {}, "perfect": {}, "wonderful": {}, "awesome": {},
	"help": {}, "helpful": {}, "pleasure": {}, "love": {}, "nice": {}, "absolutely": {},
	"welcome": {}, "resolved": {}, "fantastic": {}, "amazing": {}, "pleased": {},
	"best": {}, "easy": {}, "yes": {}, "sure": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "angry": {}, "upset": {}, "frustrated": {},
	"frustrating": {}, "annoyed": {}, "problem": {}, "issue": {}, "wrong": {},
	"cancel": {}, "complaint": {}, "hate": {}, "horrible": {}, "disappointed": {},
	"unhappy": {}, "worst": {}, "ridiculous": {}, "confusing": {}, "broken": {},
	"refund": {}, "rude": {}, "waste": {},
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "don't": {}, "didn't": {}, "isn't": {},
	"wasn't": {}, "can't": {}, "won't": {},
}

type conversionRule struct {
	kind    string
	phrases []string
}

// conversionRules are evaluated in order; on equal hit counts the earlier
// rule wins.
var conversionRules = []conversionRule{
	{kind: "sale", phrases: []string{
		"purchase", "bought", "buy it", "sign me up", "signed up", "place the order",
		"placed the order", "credit card", "card number", "payment", "enroll", "enrolled",
		"go ahead with", "i'll take it",
	}},
	{kind: "appointment", phrases: []string{
		"appointment", "schedule", "scheduled", "book", "booked", "booking",
		"set up a time", "calendar",
	}},
	{kind: "transfer", phrases: []string{
		"transfer you", "transferring", "connect you with", "put you through", "warm transfer",
	}},
	{kind: "lead", phrases: []string{
		"email me", "send me", "more information", "get a quote", "interested",
		"contact information",
	}},
	{kind: "callback", phrases: []string{
		"call me back", "call you back", "callback", "call back later", "reach out tomorrow",
	}},
}

var rejectionPhrases = []string{
	"not interested",
	"no thanks",
	"no thank you",
	"too expensive",
	"cancel",
	"do not call",
	"don't call",
	"remove me",
}
