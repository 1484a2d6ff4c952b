package devanagari

const (
	nuktaSign = '\u093C'
	virama    = '\u094D'
	inherent  = "a"
)

// row holds the ITRANS, Harvard-Kyoto and IAST forms of one Devanagari rune.
// An empty form means the scheme has no notation for the rune.
type row struct {
	r     rune
	forms [3]string
}

var vowelRows = []row{
	{'अ', [3]string{"a", "a", "a"}},
	{'आ', [3]string{"A", "A", "ā"}},
	{'इ', [3]string{"i", "i", "i"}},
	{'ई', [3]string{"I", "I", "ī"}},
	{'उ', [3]string{"u", "u", "u"}},
	{'ऊ', [3]string{"U", "U", "ū"}},
	{'ऋ', [3]string{"RRi", "R", "ṛ"}},
	{'ॠ', [3]string{"RRI", "RR", "ṝ"}},
	{'ऌ', [3]string{"LLi", "lR", "ḷ"}},
	{'ॡ', [3]string{"LLI", "lRR", "ḹ"}},
	{'ए', [3]string{"e", "e", "e"}},
	{'ऐ', [3]string{"ai", "ai", "ai"}},
	{'ओ', [3]string{"o", "o", "o"}},
	{'औ', [3]string{"au", "au", "au"}},
	{'ऑ', [3]string{"A.c", "o", "ô"}},
}

var markRows = []row{
	{'ा', [3]string{"A", "A", "ā"}},
	{'ि', [3]string{"i", "i", "i"}},
	{'ी', [3]string{"I", "I", "ī"}},
	{'ु', [3]string{"u", "u", "u"}},
	{'ू', [3]string{"U", "U", "ū"}},
	{'ृ', [3]string{"RRi", "R", "ṛ"}},
	{'ॄ', [3]string{"RRI", "RR", "ṝ"}},
	{'ॢ', [3]string{"LLi", "lR", "ḷ"}},
	{'ॣ', [3]string{"LLI", "lRR", "ḹ"}},
	{'े', [3]string{"e", "e", "e"}},
	{'ै', [3]string{"ai", "ai", "ai"}},
	{'ो', [3]string{"o", "o", "o"}},
	{'ौ', [3]string{"au", "au", "au"}},
	{'ॉ', [3]string{"A.c", "o", "ô"}},
}

var consonantRows = []row{
	{'क', [3]string{"k", "k", "k"}},
	{'ख', [3]string{"kh", "kh", "kh"}},
	{'ग', [3]string{"g", "g", "g"}},
	{'घ', [3]string{"gh", "gh", "gh"}},
	{'ङ', [3]string{"~N", "G", "ṅ"}},
	{'च', [3]string{"ch", "c", "c"}},
	{'छ', [3]string{"Ch", "ch", "ch"}},
	{'ज', [3]string{"j", "j", "j"}},
	{'झ', [3]string{"jh", "jh", "jh"}},
	{'ञ', [3]string{"~n", "J", "ñ"}},
	{'ट', [3]string{"T", "T", "ṭ"}},
	{'ठ', [3]string{"Th", "Th", "ṭh"}},
	{'ड', [3]string{"D", "D", "ḍ"}},
	{'ढ', [3]string{"Dh", "Dh", "ḍh"}},
	{'ण', [3]string{"N", "N", "ṇ"}},
	{'त', [3]string{"t", "t", "t"}},
	{'थ', [3]string{"th", "th", "th"}},
	{'द', [3]string{"d", "d", "d"}},
	{'ध', [3]string{"dh", "dh", "dh"}},
	{'न', [3]string{"n", "n", "n"}},
	{'प', [3]string{"p", "p", "p"}},
	{'फ', [3]string{"ph", "ph", "ph"}},
	{'ब', [3]string{"b", "b", "b"}},
	{'भ', [3]string{"bh", "bh", "bh"}},
	{'म', [3]string{"m", "m", "m"}},
	{'य', [3]string{"y", "y", "y"}},
	{'र', [3]string{"r", "r", "r"}},
	{'ल', [3]string{"l", "l", "l"}},
	{'ळ', [3]string{"L", "L", "ḻ"}},
	{'व', [3]string{"v", "v", "v"}},
	{'श', [3]string{"sh", "z", "ś"}},
	{'ष', [3]string{"Sh", "S", "ṣ"}},
	{'स', [3]string{"s", "s", "s"}},
	{'ह', [3]string{"h", "h", "h"}},
}

// nuktaRows are keyed by the base consonant. Harvard-Kyoto has no nukta
// notation, so every one of its forms is empty.
var nuktaRows = []row{
	{'क', [3]string{"q", "", "q"}},
	{'ख', [3]string{"K", "", "ḵh"}},
	{'ग', [3]string{"G", "", "ġ"}},
	{'ज', [3]string{"z", "", "z"}},
	{'झ', [3]string{"zh", "", "zh"}},
	{'ड', [3]string{".D", "", "ṛ"}},
	{'ढ', [3]string{".Dh", "", "ṛh"}},
	{'फ', [3]string{"f", "", "f"}},
	{'य', [3]string{"Y", "", "ẏ"}},
}

var symbolRows = []row{
	{'ं', [3]string{"M", "M", "ṃ"}},
	{'ः', [3]string{"H", "H", "ḥ"}},
	{'ँ', [3]string{".N", "~", "m̐"}},
	{'ऽ', [3]string{".a", "'", "'"}},
	{'ॐ', [3]string{"OM", "OM", "oṃ"}},
	{'।', [3]string{"|", "|", "|"}},
	{'॥', [3]string{"||", "||", "||"}},
	{'०', [3]string{"0", "0", "0"}},
	{'१', [3]string{"1", "1", "1"}},
	{'२', [3]string{"2", "2", "2"}},
	{'३', [3]string{"3", "3", "3"}},
	{'४', [3]string{"4", "4", "4"}},
	{'५', [3]string{"5", "5", "5"}},
	{'६', [3]string{"6", "6", "6"}},
	{'७', [3]string{"7", "7", "7"}},
	{'८', [3]string{"8", "8", "8"}},
	{'९', [3]string{"9", "9", "9"}},
}

// precomposed maps the single-codepoint nukta letters to their base consonant.
var precomposed = map[rune]rune{
	'\u0958': '\u0915', // qa
	'\u0959': '\u0916', // khha
	'\u095A': '\u0917', // ghha
	'\u095B': '\u091C', // za
	'\u095C': '\u0921', // dddha
	'\u095D': '\u0922', // rha
	'\u095E': '\u092B', // fa
	'\u095F': '\u092F', // yya
}

type table struct {
	vowels     map[rune]string
	marks      map[rune]string
	consonants map[rune]string
	nuktas     map[rune]string
	symbols    map[rune]string
}

func buildTable(col int) *table {
	return &table{
		vowels:     column(vowelRows, col),
		marks:      column(markRows, col),
		consonants: column(consonantRows, col),
		nuktas:     column(nuktaRows, col),
		symbols:    column(symbolRows, col),
	}
}

func column(rows []row, col int) map[rune]string {
	m := make(map[rune]string, len(rows))
	for _, r := range rows {
		if f := r.forms[col]; f != "" {
			m[r.r] = f
		}
	}
	return m
}
