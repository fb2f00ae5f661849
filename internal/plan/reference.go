package plan

import (
	"regexp"
	"strings"
)

// Padrão livro + capítulo/versículo: letras (com acentos), ordinais romanos
// (I, II, III), espaços e pontos antes do primeiro dígito.
var (
	refPattern          = regexp.MustCompile(`^([IVXivxA-Za-zÀ-ÿ\s.]+?)\s*(\d.*)$`)
	chapterVersePattern = regexp.MustCompile(`^(\d+)\.(\d.*)$`)
)

// Reference é o resultado da formatação de uma citação bíblica.
type Reference struct {
	Raw          string // texto original, sem espaços nas pontas
	Book         string // abreviação do livro ("Gn"), vazio quando não houve match
	BookFull     string // nome completo resolvido, ou a própria abreviação se desconhecida
	Passage      string // trecho de capítulo/versículo ("1.1-5", "12-14")
	Chapter      string // parte destacada visualmente ("1" em "1.1-5"; "1-5" em intervalo puro)
	Verses       string // versículos após o capítulo, vazio em intervalo puro
	Known        bool   // livro presente na tabela de abreviações
	Matched      bool   // o padrão livro+número foi reconhecido
	Continuation bool   // referência numérica herdando o livro anterior
}

// Formatter formata referências mantendo o contexto do último livro citado,
// para que referências que começam com número ("3") herdem o livro anterior.
// Não é seguro para uso concorrente; cada sessão de renderização usa o seu.
type Formatter struct {
	lastBook string
}

// NewFormatter cria um Formatter sem contexto de livro.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Reset limpa o contexto do último livro. Chamar ao trocar de dia ou de lista.
func (f *Formatter) Reset() {
	f.lastBook = ""
}

// Format interpreta uma referência livre. Entradas sem padrão reconhecível não
// são erro: a referência volta intacta com Matched=false.
func (f *Formatter) Format(raw string) Reference {
	ref := Reference{Raw: strings.TrimSpace(raw)}

	if ref.Raw == "" {
		return ref
	}

	// Começa com dígito: continuação do livro citado anteriormente.
	if ref.Raw[0] >= '0' && ref.Raw[0] <= '9' {
		ref.Passage = ref.Raw
		ref.Chapter, ref.Verses = splitPassage(ref.Raw)
		if f.lastBook == "" {
			return ref
		}
		ref.Book = f.lastBook
		ref.BookFull = BookName(f.lastBook)
		ref.Known = KnownBook(f.lastBook)
		ref.Matched = true
		ref.Continuation = true
		return ref
	}

	m := refPattern.FindStringSubmatch(ref.Raw)
	if m == nil {
		return ref
	}

	ref.Book = strings.TrimSpace(m[1])
	ref.Passage = strings.TrimSpace(m[2])
	ref.BookFull = BookName(ref.Book)
	ref.Known = KnownBook(ref.Book)
	ref.Matched = true
	ref.Chapter, ref.Verses = splitPassage(ref.Passage)

	f.lastBook = ref.Book

	return ref
}

// splitPassage separa a parte destacada (capítulo) do restante.
// "1.1-5" → ("1", "1-5"): capítulo seguido de versículos.
// "1-5" ou "12" → ("1-5", ""): intervalo de capítulos, destacado por inteiro.
func splitPassage(passage string) (chapter, verses string) {
	if m := chapterVersePattern.FindStringSubmatch(passage); m != nil {
		return m[1], m[2]
	}
	return passage, ""
}
