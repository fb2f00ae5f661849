// Package plan carrega o plano de leitura anual (365 dias) e formata as
// referências bíblicas de cada dia. O plano é estático: embutido no binário e
// carregado uma única vez.
package plan

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

// TotalDays é a duração do plano anual.
const TotalDays = 365

//go:embed plan.json
var planJSON []byte

// Day é um dia do plano com suas referências ordenadas.
type Day struct {
	Dia         int      `json:"dia"`
	Referencias []string `json:"referencias"`
}

var (
	loadOnce sync.Once
	loadErr  error
	days     []Day
	byDay    map[int]Day
)

func load() {
	if err := json.Unmarshal(planJSON, &days); err != nil {
		loadErr = fmt.Errorf("parse embedded reading plan: %w", err)
		return
	}
	if len(days) != TotalDays {
		loadErr = fmt.Errorf("embedded reading plan has %d days, want %d", len(days), TotalDays)
		return
	}
	byDay = make(map[int]Day, len(days))
	for _, d := range days {
		byDay[d.Dia] = d
	}
}

// Load força o carregamento do plano embutido e devolve qualquer erro de
// parsing. Chamado na inicialização do servidor para falhar cedo.
func Load() error {
	loadOnce.Do(load)
	return loadErr
}

// All retorna os 365 dias em ordem.
func All() []Day {
	loadOnce.Do(load)
	return days
}

// ByDay retorna o dia pedido do plano.
func ByDay(day int) (Day, bool) {
	loadOnce.Do(load)
	d, ok := byDay[day]
	return d, ok
}

// TotalReferences retorna quantas referências o dia possui; 0 para dias fora
// do plano.
func TotalReferences(day int) int {
	d, ok := ByDay(day)
	if !ok {
		return 0
	}
	return len(d.Referencias)
}
