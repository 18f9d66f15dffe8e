package nlp

// Closed-class and gazetteer word lists used by the tagger and entity recognizer.
// All entries are lowercase.

var determiners = setOf(
	"the", "a", "an", "this", "that", "these", "those", "all", "no",
	"every", "each", "some", "any", "another", "both", "either", "neither",
)

var possessives = setOf("its", "their", "his", "her", "our", "my", "your")

var adpositions = setOf(
	"in", "on", "at", "near", "off", "by", "for", "with", "from", "to", "of",
	"during", "before", "after", "into", "onto", "through", "over", "under",
	"across", "along", "around", "between", "within", "without", "against",
	"toward", "towards", "about", "since", "until", "upon", "via", "amid",
	"aboard", "behind", "beyond", "outside", "inside", "alongside", "past",
	"off", "out", "up", "down",
)

var pronouns = setOf(
	"it", "itself", "he", "she", "they", "them", "him", "we", "us", "i",
	"you", "who", "whom", "which", "what", "there", "themselves", "herself",
	"himself",
)

var conjunctions = setOf("and", "or", "but", "nor")

var subordinators = setOf(
	"because", "while", "although", "though", "if", "when", "where",
	"whether", "once", "as",
)

var auxiliaries = setOf(
	"is", "are", "was", "were", "be", "been", "being", "am", "has", "have",
	"had", "will", "would", "can", "could", "should", "may", "might", "must",
	"shall", "do", "does", "did",
)

var particles = setOf("not", "n't")

var numberWords = setOf(
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen", "twenty", "thirty", "forty", "fifty",
	"sixty", "seventy", "eighty", "ninety", "hundred", "thousand", "dozen",
	"several",
)

var adverbs = setOf(
	"aground", "ashore", "adrift", "afloat", "then", "soon", "later", "still",
	"already", "again", "also", "never", "not", "too", "very", "yet", "now",
	"here", "almost", "nearly",
)

var adjectives = setOf(
	"strong", "poor", "heavy", "minor", "major", "severe", "high", "low", "bad",
	"rough", "dense", "thick", "safe", "large", "small", "big", "great", "light",
	"serious", "slight", "extensive", "significant", "sudden", "shallow", "deep",
	"narrow", "wide", "full", "empty", "first", "second", "third", "last",
	"next", "new", "old", "other", "same", "such", "many", "few", "much",
	"more", "most", "less", "least", "late", "early", "local", "nearby",
	"hard", "soft", "calm", "dark", "limited", "reduced", "due",
)

// verbForms holds irregular and bare verb forms that suffix rules miss
var verbForms = setOf(
	"ran", "run", "runs", "struck", "strike", "strikes", "hit", "hits", "sank",
	"sink", "sinks", "sunk", "stuck", "sent", "took", "take", "left", "leave",
	"made", "make", "came", "come", "went", "go", "held", "hold", "broke",
	"broken", "began", "begin", "caught", "drove", "driven", "lost", "lose",
	"found", "remain", "remains", "assist", "assess", "tow", "tows",
	"refloat", "evacuate", "rescue", "dispatch", "deploy", "suffer", "sustain",
	"block", "collide", "ground", "strand", "beach", "founder", "drift",
	"report", "say", "said", "says", "told", "led", "lead", "keep", "kept",
)

// nounExceptions end in verb-like suffixes but are nouns
var nounExceptions = setOf(
	"morning", "evening", "ceiling", "building", "ring", "string", "thing",
	"king", "spring", "wing", "bed", "shed", "seed", "need", "speed", "red",
	"feed", "weed", "hundred", "steering", "mooring", "berthing",
)

var months = setOf(
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct",
	"nov", "dec",
)

// ambiguousMonths only count as months next to a number
var ambiguousMonths = setOf("may", "march", "mar", "jan", "dec")

var weekdays = setOf(
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
)

var relativeDays = setOf("yesterday", "today", "tomorrow", "tonight")

var dayParts = setOf(
	"morning", "afternoon", "evening", "night", "dawn", "dusk", "midnight",
	"noon", "daybreak", "nightfall",
)

var dateUnits = setOf(
	"day", "days", "week", "weeks", "month", "months", "year", "years",
	"decade", "decades",
)

var timeUnits = setOf("hour", "hours", "minute", "minutes", "second", "seconds")

var meridiems = setOf("am", "pm", "a.m", "p.m", "hrs", "utc", "gmt", "lt")

var personTitles = setOf(
	"captain", "capt", "mr", "mrs", "ms", "dr", "master", "pilot", "officer",
	"chief", "commander", "cdr", "lt", "admiral", "sir",
)

// abbreviations do not end a sentence when followed by "."
var abbreviations = setOf(
	"capt", "mr", "mrs", "ms", "dr", "st", "lt", "cdr", "no", "approx", "inc",
	"ltd", "co", "corp", "vs", "etc", "jr", "sr", "gen", "adm",
)

var orgSuffixes = setOf(
	"guard", "authority", "authorities", "agency", "administration", "board",
	"bureau", "company", "corporation", "inc", "ltd", "navy", "service",
	"services", "ministry", "department", "council", "commission",
	"organization", "organisation", "association", "institute", "university",
	"police", "group", "shipping", "lines", "maritime", "society", "registry",
)

// facilitySuffixes mark man-made structures
var facilitySuffixes = setOf(
	"canal", "port", "harbor", "harbour", "bridge", "terminal", "pier",
	"wharf", "dock", "docks", "lock", "locks", "breakwater", "jetty",
	"anchorage", "marina", "lighthouse",
)

var geoSuffixes = setOf(
	"strait", "straits", "reef", "sea", "ocean", "bay", "island", "islands",
	"channel", "river", "gulf", "cape", "coast", "passage", "sound", "lake",
	"point", "shoal", "shoals", "bank", "banks", "head", "peninsula",
	"estuary", "firth", "fjord", "lagoon", "atoll", "rock", "rocks", "sands",
	"waters", "narrows", "archipelago", "delta",
)

var locativePrepositions = setOf(
	"in", "near", "off", "at", "from", "to", "into", "outside", "inside",
	"across", "around", "toward", "towards", "along", "between", "approaching",
)

func setOf(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
