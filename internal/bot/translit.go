package bot

// enToThai maps QWERTY keystrokes to the Thai Kedmanee layout, covering the
// "typed English while the keyboard was set to Thai" case. Characters off
// the map pass through unchanged.
var enToThai = map[rune]rune{
	'1': 'ๅ', '2': '/', '3': '-', '4': 'ภ', '5': 'ถ',
	'6': 'ุ', '7': 'ึ', '8': 'ค', '9': 'ต', '0': 'จ',
	'-': 'ข', '=': 'ช',
	'!': '+', '@': '๑', '#': '๒', '$': '๓', '%': '๔',
	'^': 'ู', '&': '฿', '*': '๕', '(': '๖', ')': '๗',
	'_': '๘', '+': '๙',

	'q': 'ๆ', 'w': 'ไ', 'e': 'ำ', 'r': 'พ', 't': 'ะ',
	'y': 'ั', 'u': 'ี', 'i': 'ร', 'o': 'น', 'p': 'ย',
	'[': 'บ', ']': 'ล', '\\': 'ฃ',
	'Q': '๐', 'W': '"', 'E': 'ฎ', 'R': 'ฑ', 'T': 'ธ',
	'Y': 'ํ', 'U': '๊', 'I': 'ณ', 'O': 'ฯ', 'P': 'ญ',
	'{': 'ฐ', '}': ',', '|': 'ฅ',

	'a': 'ฟ', 's': 'ห', 'd': 'ก', 'f': 'ด', 'g': 'เ',
	'h': '้', 'j': '่', 'k': 'า', 'l': 'ส',
	';': 'ว', '\'': 'ง',
	'A': 'ฤ', 'S': 'ฆ', 'D': 'ฏ', 'F': 'โ', 'G': 'ฌ',
	'H': '็', 'J': '๋', 'K': 'ษ', 'L': 'ศ',
	':': 'ซ', '"': '.',

	'z': 'ผ', 'x': 'ป', 'c': 'แ', 'v': 'อ', 'b': 'ิ',
	'n': 'ื', 'm': 'ท',
	',': 'ม', '.': 'ใ', '/': 'ฝ',
	'Z': '(', 'X': ')', 'C': 'ฉ', 'V': 'ฮ', 'B': 'ฺ',
	'N': '์', 'M': '?',
	'<': 'ฒ', '>': 'ฬ', '?': 'ฦ',
}

// TranslitEnToThai remaps every rune of text through the Kedmanee table.
func TranslitEnToThai(text string) string {
	out := make([]rune, 0, len(text))

	for _, r := range text {
		if th, ok := enToThai[r]; ok {
			out = append(out, th)

			continue
		}

		out = append(out, r)
	}

	return string(out)
}
