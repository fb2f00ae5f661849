package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/bibliaplan/internal/plan"
	"github.com/bibliaplan/internal/service"
)

// Notifier recebe os eventos de interface do controlador. Implementações
// típicas mostram toasts; NopNotifier ignora tudo.
type Notifier interface {
	Info(message string)
	Error(message string)
	AchievementUnlocked(m service.Milestone)
	SessionWarning(remaining time.Duration)
	SessionExpired()
}

// NopNotifier descarta todos os eventos.
type NopNotifier struct{}

func (NopNotifier) Info(string)                           {}
func (NopNotifier) Error(string)                          {}
func (NopNotifier) AchievementUnlocked(service.Milestone) {}
func (NopNotifier) SessionWarning(time.Duration)          {}
func (NopNotifier) SessionExpired()                       {}

// Options ajusta os intervalos do controlador. O zero de cada campo usa o
// padrão correspondente.
type Options struct {
	DebounceDelay      time.Duration // coalescer gravações de conclusão (300ms)
	RefreshInterval    time.Duration // atualização periódica do servidor (60s)
	InactivityTimeout  time.Duration // encerramento da sessão por inatividade (30min)
	WarningLead        time.Duration // antecedência do aviso de expiração (5min)
	ActivityThrottle   time.Duration // intervalo mínimo entre resets de inatividade (1min)
	AchievementStagger time.Duration // espaçamento entre notificações de conquista (500ms)
}

func (o Options) withDefaults() Options {
	if o.DebounceDelay == 0 {
		o.DebounceDelay = 300 * time.Millisecond
	}
	if o.RefreshInterval == 0 {
		o.RefreshInterval = 60 * time.Second
	}
	if o.InactivityTimeout == 0 {
		o.InactivityTimeout = 30 * time.Minute
	}
	if o.WarningLead == 0 {
		o.WarningLead = 5 * time.Minute
	}
	if o.ActivityThrottle == 0 {
		o.ActivityThrottle = time.Minute
	}
	if o.AchievementStagger == 0 {
		o.AchievementStagger = 500 * time.Millisecond
	}
	return o
}

// Controller mantém o estado local do plano: dia atual, snapshot de progresso
// e conquistas já concedidas. Mutações são aplicadas de forma otimista, a
// conclusão derivada é recalculada na hora e a persistência de conclusões é
// coalescida por debounce. Uma atualização periódica reconcilia com o backend
// (a última resposta vence).
type Controller struct {
	mu       sync.Mutex
	backend  ProgressBackend
	notifier Notifier
	opts     Options
	now      func() time.Time

	currentDay int
	snap       *Snapshot
	awarded    map[string]bool

	pendingDays   map[int]bool
	debounceTimer *time.Timer

	refreshTicker *time.Ticker
	refreshDone   chan struct{}
	paused        bool

	lastActivityReset time.Time
	warningTimer      *time.Timer
	expireTimer       *time.Timer
	staggerTimers     []*time.Timer
}

// NewController carrega o snapshot inicial do backend escolhido.
func NewController(backend ProgressBackend, notifier Notifier, opts Options) (*Controller, error) {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	snap, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load initial snapshot: %w", err)
	}

	c := &Controller{
		backend:     backend,
		notifier:    notifier,
		opts:        opts.withDefaults(),
		now:         time.Now,
		currentDay:  1,
		snap:        snap,
		awarded:     make(map[string]bool),
		pendingDays: make(map[int]bool),
	}
	for _, id := range snap.Achievements {
		c.awarded[id] = true
	}
	return c, nil
}

// WithClock troca o relógio usado pelo throttle de atividade, para testes.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// CurrentDay devolve o dia selecionado.
func (c *Controller) CurrentDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentDay
}

// SetDay seleciona um dia, limitado a 1..365.
func (c *Controller) SetDay(day int) int {
	if day < 1 {
		day = 1
	}
	if day > plan.TotalDays {
		day = plan.TotalDays
	}

	c.mu.Lock()
	c.currentDay = day
	c.mu.Unlock()
	return day
}

// Snapshot devolve uma cópia do estado local.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Clone()
}

// DayCompleted informa a conclusão local de um dia.
func (c *Controller) DayCompleted(day int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Progress[day]
}

// ToggleReference inverte a marcação de uma referência do dia, aplica a
// mudança localmente, persiste a referência e rederiva a conclusão do dia.
func (c *Controller) ToggleReference(day, index int) error {
	if index < 0 || index >= plan.TotalReferences(day) {
		return fmt.Errorf("reference index %d out of range for day %d", index, day)
	}

	c.mu.Lock()
	refs := c.snap.ReadRefs[day]
	pos := -1
	for i, idx := range refs {
		if idx == index {
			pos = i
			break
		}
	}
	read := pos < 0
	if read {
		refs = append(refs, index)
	} else {
		refs = append(refs[:pos], refs[pos+1:]...)
	}
	c.snap.ReadRefs[day] = refs
	c.mu.Unlock()

	if err := c.backend.SaveReference(day, index, read); err != nil {
		// Estado otimista é mantido; a próxima atualização reconcilia.
		c.notifier.Error("Erro ao salvar leitura. Tente novamente.")
	}

	c.rederiveDay(day)
	return nil
}

// MarkAllReferences marca ou desmarca todas as referências do dia de uma vez.
func (c *Controller) MarkAllReferences(day int, read bool) error {
	total := plan.TotalReferences(day)
	if total == 0 {
		return fmt.Errorf("%d is not a plan day", day)
	}

	indices := []int{}
	if read {
		indices = make([]int, total)
		for i := range indices {
			indices[i] = i
		}
	}

	c.mu.Lock()
	copied := make([]int, len(indices))
	copy(copied, indices)
	c.snap.ReadRefs[day] = copied
	c.mu.Unlock()

	if err := c.backend.SaveReferencesBulk(day, indices); err != nil {
		c.notifier.Error("Erro ao salvar leituras. Tente novamente.")
	}

	c.rederiveDay(day)
	return nil
}

// SetDayCompleted atende o checkbox de conclusão. Marcar como concluído exige
// todas as referências lidas; desmarcar é sempre permitido.
func (c *Controller) SetDayCompleted(day int, completed bool) error {
	total := plan.TotalReferences(day)
	if total == 0 {
		return fmt.Errorf("%d is not a plan day", day)
	}

	c.mu.Lock()
	read := len(c.snap.ReadRefs[day])
	if completed && read < total {
		c.mu.Unlock()
		return fmt.Errorf("leituras marcadas %d/%d: marque todas antes de concluir o dia", read, total)
	}
	fresh := c.applyCompletionLocked(day, completed)
	c.mu.Unlock()

	c.announceAchievements(fresh)
	return nil
}

// rederiveDay recalcula a conclusão derivada do dia e, quando ela muda,
// atualiza o estado local e agenda a persistência.
func (c *Controller) rederiveDay(day int) {
	total := plan.TotalReferences(day)

	c.mu.Lock()
	derived := total > 0 && len(c.snap.ReadRefs[day]) == total
	var fresh []service.Milestone
	if c.snap.Progress[day] != derived {
		fresh = c.applyCompletionLocked(day, derived)
	}
	c.mu.Unlock()

	c.announceAchievements(fresh)
}

// applyCompletionLocked registra a conclusão local, agenda o debounce de
// gravação e avalia conquistas recém-cruzadas. Chamar com o mutex preso; as
// conquistas devolvidas são anunciadas e persistidas fora do lock.
func (c *Controller) applyCompletionLocked(day int, completed bool) []service.Milestone {
	c.snap.Progress[day] = completed
	c.pendingDays[day] = completed

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = time.AfterFunc(c.opts.DebounceDelay, c.flushPending)

	if !completed {
		return nil
	}

	byID := make(map[string]service.Milestone)
	for _, m := range service.Milestones() {
		byID[m.ID] = m
	}

	var fresh []service.Milestone
	for _, id := range service.CheckNew(c.awarded, c.snap.CompletedDays()) {
		c.awarded[id] = true
		c.snap.Achievements = append(c.snap.Achievements, id)
		fresh = append(fresh, byID[id])
	}
	return fresh
}

// flushPending grava as conclusões coalescidas pelo debounce.
func (c *Controller) flushPending() {
	c.mu.Lock()
	pending := c.pendingDays
	c.pendingDays = make(map[int]bool)
	c.mu.Unlock()

	for day, completed := range pending {
		if err := c.backend.SaveDay(day, completed); err != nil {
			c.notifier.Error("Erro ao salvar progresso. Tente novamente.")
		}
	}
}

// announceAchievements persiste as conquistas recém-cruzadas e as notifica em
// ordem de limiar, com o espaçamento configurado entre notificações.
func (c *Controller) announceAchievements(fresh []service.Milestone) {
	for i, milestone := range fresh {
		m := milestone
		timer := time.AfterFunc(time.Duration(i)*c.opts.AchievementStagger, func() {
			c.notifier.AchievementUnlocked(m)
		})

		c.mu.Lock()
		c.staggerTimers = append(c.staggerTimers, timer)
		c.mu.Unlock()

		if err := c.backend.SaveAchievement(m.ID); err != nil {
			c.notifier.Error("Erro ao salvar conquista.")
		}
	}
}

// NewCycle apaga todo o progresso local e remoto ("novo ciclo").
func (c *Controller) NewCycle() error {
	if err := c.backend.ClearAll(); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}

	c.mu.Lock()
	c.snap = NewSnapshot()
	c.awarded = make(map[string]bool)
	c.pendingDays = make(map[int]bool)
	c.mu.Unlock()

	c.notifier.Info("Novo ciclo iniciado com sucesso!")
	return nil
}

// Refresh busca o estado do backend e substitui o snapshot local. A última
// resposta vence; não há token de ordenação.
func (c *Controller) Refresh() error {
	snap, err := c.backend.Load()
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}

	c.mu.Lock()
	c.snap = snap
	c.awarded = make(map[string]bool)
	for _, id := range snap.Achievements {
		c.awarded[id] = true
	}
	c.mu.Unlock()
	return nil
}

// StartRefresh liga a atualização periódica em segundo plano. Falhas de rede
// são silenciosas; a próxima rodada tenta de novo.
func (c *Controller) StartRefresh() {
	c.mu.Lock()
	if c.refreshTicker != nil {
		c.mu.Unlock()
		return
	}
	c.refreshTicker = time.NewTicker(c.opts.RefreshInterval)
	c.refreshDone = make(chan struct{})
	ticker := c.refreshTicker
	done := c.refreshDone
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				paused := c.paused
				c.mu.Unlock()
				if !paused {
					_ = c.Refresh()
				}
			case <-done:
				return
			}
		}
	}()
}

// PauseRefresh suspende a atualização periódica (aba oculta).
func (c *Controller) PauseRefresh() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// ResumeRefresh retoma a atualização periódica.
func (c *Controller) ResumeRefresh() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// RecordActivity reinicia os temporizadores de inatividade. Chamadas em
// sequência dentro da janela de throttle são ignoradas para evitar churn.
func (c *Controller) RecordActivity() {
	c.mu.Lock()
	now := c.now()
	if !c.lastActivityReset.IsZero() && now.Sub(c.lastActivityReset) < c.opts.ActivityThrottle {
		c.mu.Unlock()
		return
	}
	c.lastActivityReset = now

	if c.warningTimer != nil {
		c.warningTimer.Stop()
	}
	if c.expireTimer != nil {
		c.expireTimer.Stop()
	}

	warningIn := c.opts.InactivityTimeout - c.opts.WarningLead
	c.warningTimer = time.AfterFunc(warningIn, func() {
		c.notifier.SessionWarning(c.opts.WarningLead)
	})
	c.expireTimer = time.AfterFunc(c.opts.InactivityTimeout, func() {
		c.notifier.SessionExpired()
	})
	c.mu.Unlock()
}

// Stop encerra os temporizadores e a atualização periódica.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	if c.warningTimer != nil {
		c.warningTimer.Stop()
	}
	if c.expireTimer != nil {
		c.expireTimer.Stop()
	}
	for _, t := range c.staggerTimers {
		t.Stop()
	}
	c.staggerTimers = nil

	if c.refreshTicker != nil {
		c.refreshTicker.Stop()
		close(c.refreshDone)
		c.refreshTicker = nil
	}
}
