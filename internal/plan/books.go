package plan

import "strings"

// livros mapeia abreviações dos livros bíblicos para o nome completo.
var livros = map[string]string{
	// Antigo Testamento
	"Gn":    "Gênesis",
	"Êx":    "Êxodo",
	"Ex":    "Êxodo",
	"Lv":    "Levítico",
	"Nm":    "Números",
	"Dt":    "Deuteronômio",
	"Js":    "Josué",
	"Jz":    "Juízes",
	"Rt":    "Rute",
	"I Sm":  "1 Samuel",
	"II Sm": "2 Samuel",
	"I Rs":  "1 Reis",
	"II Rs": "2 Reis",
	"I Cr":  "1 Crônicas",
	"II Cr": "2 Crônicas",
	"Ed":    "Esdras",
	"Ne":    "Neemias",
	"Et":    "Ester",
	"Jó":    "Jó",
	"Sl":    "Salmos",
	"Pv":    "Provérbios",
	"Ec":    "Eclesiastes",
	"Ct":    "Cânticos",
	"Is":    "Isaías",
	"Jr":    "Jeremias",
	"Lm":    "Lamentações",
	"Ez":    "Ezequiel",
	"Dn":    "Daniel",
	"Os":    "Oséias",
	"Jl":    "Joel",
	"Am":    "Amós",
	"Ob":    "Obadias",
	"Jn":    "Jonas",
	"Mq":    "Miquéias",
	"Na":    "Naum",
	"Hc":    "Habacuque",
	"Sf":    "Sofonias",
	"Ag":    "Ageu",
	"Zc":    "Zacarias",
	"Ml":    "Malaquias",

	// Novo Testamento
	"Mt":     "Mateus",
	"Mc":     "Marcos",
	"Lc":     "Lucas",
	"Jo":     "João",
	"João":   "João",
	"At":     "Atos",
	"Rm":     "Romanos",
	"I Co":   "1 Coríntios",
	"II Co":  "2 Coríntios",
	"Gl":     "Gálatas",
	"Ef":     "Efésios",
	"Fp":     "Filipenses",
	"Cl":     "Colossenses",
	"I Ts":   "1 Tessalonicenses",
	"II Ts":  "2 Tessalonicenses",
	"I Tm":   "1 Timóteo",
	"II Tm":  "2 Timóteo",
	"Tt":     "Tito",
	"Fm":     "Filemom",
	"Hb":     "Hebreus",
	"Tg":     "Tiago",
	"I Pe":   "1 Pedro",
	"II Pe":  "2 Pedro",
	"I Jo":   "1 João",
	"II Jo":  "2 João",
	"III Jo": "3 João",
	"Jd":     "Judas",
	"Ap":     "Apocalipse",
}

// BookName resolve uma abreviação para o nome completo do livro.
// Um ponto final na abreviação ("Gn.") é equivalente à forma sem ponto.
// Abreviações desconhecidas retornam o texto original.
func BookName(abbr string) string {
	trimmed := strings.TrimSpace(abbr)
	if name, ok := livros[trimmed]; ok {
		return name
	}
	if dotless := strings.TrimSuffix(trimmed, "."); dotless != trimmed {
		if name, ok := livros[dotless]; ok {
			return name
		}
	}
	return abbr
}

// KnownBook informa se a abreviação existe na tabela de livros.
func KnownBook(abbr string) bool {
	trimmed := strings.TrimSpace(abbr)
	if _, ok := livros[trimmed]; ok {
		return true
	}
	_, ok := livros[strings.TrimSuffix(trimmed, ".")]
	return ok
}
