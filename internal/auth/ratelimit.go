// Package auth reúne a política de senha e o limitador de tentativas de login.
package auth

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

const (
	// MaxAttempts é o número de falhas consecutivas antes do bloqueio.
	MaxAttempts = 5
	// BlockDuration é a duração do bloqueio após exceder MaxAttempts.
	BlockDuration = 15 * time.Minute
	// ResetWindow é a janela após a qual falhas antigas são perdoadas.
	ResetWindow = 5 * time.Minute
	// sweepInterval controla a varredura periódica de entradas expiradas.
	sweepInterval = 30 * time.Minute
)

// loginAttempt acompanha as falhas de um único username.
type loginAttempt struct {
	count        int
	lastAttempt  time.Time
	blockedUntil time.Time
}

// LoginLimiter limita tentativas de login por username, em memória.
// O gin atende requisições em múltiplas goroutines, então todo acesso ao mapa
// passa pelo mutex. O relógio é injetável para os testes.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempt
	now      func() time.Time

	scheduler *gocron.Scheduler
}

// NewLoginLimiter constrói um limitador com relógio real.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string]*loginAttempt),
		now:      time.Now,
	}
}

// WithClock troca o relógio do limitador, usado em testes.
func (l *LoginLimiter) WithClock(now func() time.Time) *LoginLimiter {
	l.now = now
	return l
}

// Check informa se o username pode tentar login. Quando bloqueado, devolve o
// tempo restante de bloqueio. Desbloqueio e perdão de falhas antigas acontecem
// de forma preguiçosa aqui.
func (l *LoginLimiter) Check(username string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempt, ok := l.attempts[username]
	if !ok {
		return true, 0
	}

	now := l.now()

	if !attempt.blockedUntil.IsZero() {
		if now.Before(attempt.blockedUntil) {
			return false, attempt.blockedUntil.Sub(now)
		}
		// Bloqueio expirado: volta ao estado limpo.
		delete(l.attempts, username)
		return true, 0
	}

	if now.Sub(attempt.lastAttempt) > ResetWindow {
		delete(l.attempts, username)
	}

	return true, 0
}

// RegisterFailure contabiliza uma falha de credencial. Na quinta falha dentro
// da janela o username entra em bloqueio e o contador zera.
func (l *LoginLimiter) RegisterFailure(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	attempt, ok := l.attempts[username]
	if !ok {
		attempt = &loginAttempt{}
		l.attempts[username] = attempt
	}

	attempt.count++
	attempt.lastAttempt = now

	if attempt.count >= MaxAttempts {
		attempt.blockedUntil = now.Add(BlockDuration)
		attempt.count = 0
	}
}

// Clear zera o estado do username. Chamado após login bem-sucedido.
func (l *LoginLimiter) Clear(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
}

// Sweep remove entradas cujo bloqueio já expirou, para limitar memória.
func (l *LoginLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for username, attempt := range l.attempts {
		if !attempt.blockedUntil.IsZero() && now.After(attempt.blockedUntil) {
			delete(l.attempts, username)
		}
	}
}

// StartSweeper agenda a varredura periódica em segundo plano.
func (l *LoginLimiter) StartSweeper() {
	if l.scheduler != nil {
		return
	}
	l.scheduler = gocron.NewScheduler(time.UTC)
	l.scheduler.Every(sweepInterval).Do(l.Sweep)
	l.scheduler.StartAsync()
}

// StopSweeper encerra a varredura periódica.
func (l *LoginLimiter) StopSweeper() {
	if l.scheduler != nil {
		l.scheduler.Stop()
		l.scheduler = nil
	}
}

// size devolve o número de usernames acompanhados, para os testes de varredura.
func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
