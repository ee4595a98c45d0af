package keymap

// DefaultClasses returns fresh copies of the built-in classes. Dependent
// vowel signs and the hasanta are combining marks; they are stored on their
// own so they attach to whatever consonant precedes the caret.
func DefaultClasses() []Class {
	return []Class{digitClass(), consonantClass(), symbolClass(), vowelClass()}
}

func digitClass() Class {
	return Class{Kind: ClassDigits, Entries: []Entry{
		{"0", "০"}, {"1", "১"}, {"2", "২"}, {"3", "৩"}, {"4", "৪"}, {"5", "৫"},
		{"6", "৬"}, {"7", "৭"}, {"8", "৮"}, {"9", "৯"}, {TokenSpace, " "},
	}}
}

// The retroflex stops use doubled capitals. The bare t, d and n stay on the
// dental series.
func consonantClass() Class {
	return Class{Kind: ClassConsonants, Entries: []Entry{
		{"k", "ক"}, {"K", "খ"}, {"g", "গ"}, {"G", "ঘ"}, {"NG", "ঙ"},
		{"c", "চ"}, {"C", "ছ"}, {"j", "জ"}, {"J", "ঝ"}, {"Y", "ঞ"},
		{"TT", "ট"}, {"T", "ঠ"}, {"DD", "ড"}, {"D", "ঢ"}, {"NN", "ণ"},
		{"t", "ত"}, {"th", "থ"}, {"d", "দ"}, {"dh", "ধ"}, {"n", "ন"},
		{"p", "প"}, {"f", "ফ"}, {"b", "ব"}, {"v", "ভ"}, {"m", "ম"},
		{"z", "য"}, {"r", "ৰ"}, {"l", "ল"}, {"w", "ৱ"}, {"s", "শ"},
		{"S", "ষ"}, {"x", "স"}, {"h", "হ"}, {"X", "ক্ষ"}, {"R", "ড়"},
		{"Rh", "ঢ়"}, {"y", "য়"}, {"Tto", "ৎ"}, {"ng", "ং"}, {":", "ঃ"},
		{"~", "ঁ"},
	}}
}

func symbolClass() Class {
	return Class{Kind: ClassSymbols, Entries: []Entry{
		{".", "।"}, {"-", "্"}, {",", ","}, {"?", "?"}, {"!", "!"}, {"%", "%"},
		{"@", "@"}, {"#", "#"}, {"(", "("}, {")", ")"}, {"{", "{"}, {"}", "}"},
	}}
}

// Independent vowels are keyed by capitals, dependent signs by lowercase.
func vowelClass() Class {
	return Class{Kind: ClassVowels, Entries: []Entry{
		{"A", "অ"}, {"AA", "আ"}, {"I", "ই"}, {"II", "ঈ"},
		{"U", "উ"}, {"UU", "ঊ"}, {"RH", "ঋ"}, {"E", "এ"},
		{"EE", "ঐ"}, {"O", "ও"}, {"OO", "ঔ"},
		{"a", "া"}, {"i", "ি"}, {"ii", "ী"}, {"u", "ু"}, {"uu", "ূ"},
		{"rh", "ৃ"}, {"e", "ে"}, {"ee", "ৈ"}, {"o", "ো"}, {"oo", "ৌ"},
	}}
}
