// Package client implementa o controlador de estado usado pelas interfaces do
// plano de leitura: snapshot local do progresso, atualização otimista,
// persistência com debounce e reconciliação periódica com o servidor.
package client

// Snapshot é a visão local do progresso de um usuário.
type Snapshot struct {
	Progress     map[int]bool  `json:"progresso"`
	ReadRefs     map[int][]int `json:"referencias_lidas"`
	Achievements []string      `json:"conquistas"`
}

// NewSnapshot cria um snapshot vazio com todos os mapas inicializados.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Progress: make(map[int]bool),
		ReadRefs: make(map[int][]int),
	}
}

// Clone devolve uma cópia profunda do snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for day, done := range s.Progress {
		out.Progress[day] = done
	}
	for day, refs := range s.ReadRefs {
		copied := make([]int, len(refs))
		copy(copied, refs)
		out.ReadRefs[day] = copied
	}
	out.Achievements = append(out.Achievements, s.Achievements...)
	return out
}

// CompletedDays conta os dias concluídos do snapshot.
func (s *Snapshot) CompletedDays() int {
	count := 0
	for _, done := range s.Progress {
		if done {
			count++
		}
	}
	return count
}

// ProgressBackend é a capacidade de persistência do controlador. Há duas
// implementações: RemoteBackend (API autenticada) e LocalBackend (arquivo
// local para uso sem conta). A escolha acontece uma única vez na construção
// do controlador.
type ProgressBackend interface {
	Load() (*Snapshot, error)
	SaveDay(day int, completed bool) error
	SaveReference(day, index int, read bool) error
	SaveReferencesBulk(day int, indices []int) error
	SaveAchievement(id string) error
	ClearAll() error
}
