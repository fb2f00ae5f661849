package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"
)

// RemoteBackend persiste o progresso na API autenticada por sessão. O cookie
// de sessão fica no jar do http.Client.
type RemoteBackend struct {
	baseURL string
	http    *http.Client
}

// NewRemoteBackend cria um backend apontando para baseURL (sem barra final).
func NewRemoteBackend(baseURL string) (*RemoteBackend, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &RemoteBackend{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Login autentica e guarda o cookie de sessão para as próximas chamadas.
// Devolve se o servidor exige troca de senha.
func (b *RemoteBackend) Login(username, senha string) (mustChangePassword bool, err error) {
	var out struct {
		DeveTrocarSenha bool `json:"deveTrocarSenha"`
	}
	err = b.do(http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"senha":    senha,
	}, &out)
	return out.DeveTrocarSenha, err
}

// Logout encerra a sessão no servidor.
func (b *RemoteBackend) Logout() error {
	return b.do(http.MethodPost, "/api/logout", nil, nil)
}

// Load busca progresso, leituras e conquistas do servidor.
func (b *RemoteBackend) Load() (*Snapshot, error) {
	snap := NewSnapshot()

	var days []struct {
		Dia       int  `json:"dia"`
		Concluido bool `json:"concluido"`
	}
	if err := b.do(http.MethodGet, "/api/progresso", nil, &days); err != nil {
		return nil, err
	}
	for _, d := range days {
		snap.Progress[d.Dia] = d.Concluido
	}

	// Objetos JSON têm chaves string; converter para o mapa por dia.
	var rawRefs map[string][]int
	if err := b.do(http.MethodGet, "/api/referencias", nil, &rawRefs); err != nil {
		return nil, err
	}
	for key, refs := range rawRefs {
		day, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("unexpected day key %q: %w", key, err)
		}
		snap.ReadRefs[day] = refs
	}

	if err := b.do(http.MethodGet, "/api/conquistas", nil, &snap.Achievements); err != nil {
		return nil, err
	}

	return snap, nil
}

// SaveDay grava a conclusão de um dia.
func (b *RemoteBackend) SaveDay(day int, completed bool) error {
	return b.do(http.MethodPost, "/api/progresso", map[string]any{
		"dia":       day,
		"concluido": completed,
	}, nil)
}

// SaveReference grava a marcação de uma referência.
func (b *RemoteBackend) SaveReference(day, index int, read bool) error {
	return b.do(http.MethodPost, "/api/referencias", map[string]any{
		"dia":    day,
		"indice": index,
		"lida":   read,
	}, nil)
}

// SaveReferencesBulk substitui o conjunto de leituras de um dia.
func (b *RemoteBackend) SaveReferencesBulk(day int, indices []int) error {
	if indices == nil {
		indices = []int{}
	}
	path := fmt.Sprintf("/api/referencias/%d", day)
	return b.do(http.MethodPut, path, map[string]any{"indices": indices}, nil)
}

// SaveAchievement grava uma conquista desbloqueada.
func (b *RemoteBackend) SaveAchievement(id string) error {
	return b.do(http.MethodPost, "/api/conquistas", map[string]string{"conquistaId": id}, nil)
}

// ClearAll inicia um novo ciclo no servidor.
func (b *RemoteBackend) ClearAll() error {
	return b.do(http.MethodPost, "/api/progresso/limpar", nil, nil)
}

func (b *RemoteBackend) do(method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
