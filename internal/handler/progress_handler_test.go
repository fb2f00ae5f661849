package handler

import (
	"net/http"
	"testing"

	"github.com/bibliaplan/internal/plan"
	"github.com/gin-gonic/gin"
)

func TestProgressRoundTrip(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	seedUser(t, gdb, "Ana", "ana", "senha-forte!", false)
	client := newAPIClient(newTestAPI(gdb))
	mustLogin(t, client, "ana", "senha-forte!")

	recorder := client.do(t, http.MethodPost, "/api/progresso", gin.H{"dia": 3, "concluido": true})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = client.do(t, http.MethodGet, "/api/progresso", nil)
	var states []struct {
		Dia       int  `json:"dia"`
		Concluido bool `json:"concluido"`
	}
	decodeBody(t, recorder, &states)
	if len(states) != 1 || states[0].Dia != 3 || !states[0].Concluido {
		t.Fatalf("unexpected progress: %+v", states)
	}

	// Dia fora do plano é recusado.
	recorder = client.do(t, http.MethodPost, "/api/progresso", gin.H{"dia": 366, "concluido": true})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid day, got %d", recorder.Code)
	}
}

func TestSaveReferenceDerivesCompletion(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	seedUser(t, gdb, "Ana", "ana", "senha-forte!", false)
	client := newAPIClient(newTestAPI(gdb))
	mustLogin(t, client, "ana", "senha-forte!")

	total := plan.TotalReferences(1)
	if total < 2 {
		t.Fatalf("test needs day 1 with at least 2 references, got %d", total)
	}

	var resp struct {
		Success   bool `json:"success"`
		Concluido bool `json:"concluido"`
	}

	// Última referência por marcar: ainda não concluído.
	for idx := 0; idx < total-1; idx++ {
		recorder := client.do(t, http.MethodPost, "/api/referencias", gin.H{"dia": 1, "indice": idx, "lida": true})
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		decodeBody(t, recorder, &resp)
		if resp.Concluido {
			t.Fatalf("day should not be complete after %d of %d references", idx+1, total)
		}
	}

	// Cobertura completa conclui o dia.
	recorder := client.do(t, http.MethodPost, "/api/referencias", gin.H{"dia": 1, "indice": total - 1, "lida": true})
	decodeBody(t, recorder, &resp)
	if !resp.Concluido {
		t.Fatal("full coverage should complete the day")
	}

	// Desmarcar desfaz a conclusão derivada.
	recorder = client.do(t, http.MethodPost, "/api/referencias", gin.H{"dia": 1, "indice": 0, "lida": false})
	decodeBody(t, recorder, &resp)
	if resp.Concluido {
		t.Fatal("unmarking a reference should undo completion")
	}

	// Índice fora do plano é recusado.
	recorder = client.do(t, http.MethodPost, "/api/referencias", gin.H{"dia": 1, "indice": total, "lida": true})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range index, got %d", recorder.Code)
	}
}

func TestBulkSaveReferences(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	seedUser(t, gdb, "Ana", "ana", "senha-forte!", false)
	client := newAPIClient(newTestAPI(gdb))
	mustLogin(t, client, "ana", "senha-forte!")

	total := plan.TotalReferences(2)
	all := make([]int, total)
	for i := range all {
		all[i] = i
	}

	var resp struct {
		Concluido bool `json:"concluido"`
	}

	recorder := client.do(t, http.MethodPut, "/api/referencias/2", gin.H{"indices": all})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	decodeBody(t, recorder, &resp)
	if !resp.Concluido {
		t.Fatal("marking all references should complete the day")
	}

	recorder = client.do(t, http.MethodPut, "/api/referencias/2", gin.H{"indices": []int{}})
	decodeBody(t, recorder, &resp)
	if resp.Concluido {
		t.Fatal("clearing references should undo completion")
	}

	recorder = client.do(t, http.MethodPut, "/api/referencias/abc", gin.H{"indices": []int{}})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid day param, got %d", recorder.Code)
	}
}

func TestClearProgressAndSummary(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	seedUser(t, gdb, "Ana", "ana", "senha-forte!", false)
	client := newAPIClient(newTestAPI(gdb))
	mustLogin(t, client, "ana", "senha-forte!")

	for _, dia := range []int{1, 2, 3} {
		client.do(t, http.MethodPost, "/api/progresso", gin.H{"dia": dia, "concluido": true})
	}

	recorder := client.do(t, http.MethodGet, "/api/progresso/resumo", nil)
	var summary struct {
		TotalDias      int `json:"total_dias"`
		DiasConcluidos int `json:"dias_concluidos"`
		Sequencia      int `json:"sequencia"`
	}
	decodeBody(t, recorder, &summary)
	if summary.TotalDias != plan.TotalDays || summary.DiasConcluidos != 3 || summary.Sequencia != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	recorder = client.do(t, http.MethodPost, "/api/progresso/limpar", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = client.do(t, http.MethodGet, "/api/progresso/resumo", nil)
	decodeBody(t, recorder, &summary)
	if summary.DiasConcluidos != 0 {
		t.Fatalf("expected no completed days after clear, got %d", summary.DiasConcluidos)
	}
}

func TestPlanEndpoints(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	client := newAPIClient(newTestAPI(gdb))

	// O plano é público: não exige sessão.
	recorder := client.do(t, http.MethodGet, "/api/plano", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var days []struct {
		Dia         int      `json:"dia"`
		Referencias []string `json:"referencias"`
	}
	decodeBody(t, recorder, &days)
	if len(days) != plan.TotalDays {
		t.Fatalf("expected %d days, got %d", plan.TotalDays, len(days))
	}

	recorder = client.do(t, http.MethodGet, "/api/plano/1", nil)
	var day struct {
		Dia         int      `json:"dia"`
		Referencias []string `json:"referencias"`
	}
	decodeBody(t, recorder, &day)
	if day.Dia != 1 || len(day.Referencias) == 0 {
		t.Fatalf("unexpected day payload: %+v", day)
	}

	for _, path := range []string{"/api/plano/0", "/api/plano/366", "/api/plano/abc"} {
		recorder = client.do(t, http.MethodGet, path, nil)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, recorder.Code)
		}
	}
}

func TestServerTime(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	client := newAPIClient(newTestAPI(gdb))

	recorder := client.do(t, http.MethodGet, "/api/server-time", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Timestamp int64  `json:"timestamp"`
		ISO       string `json:"iso"`
		Month     int    `json:"month"`
		DayOfYear int    `json:"dayOfYear"`
	}
	decodeBody(t, recorder, &resp)
	if resp.Timestamp == 0 || resp.ISO == "" {
		t.Fatalf("unexpected server time payload: %+v", resp)
	}
	// O mês segue a convenção do cliente: janeiro é 0.
	if resp.Month < 0 || resp.Month > 11 {
		t.Fatalf("month out of range: %d", resp.Month)
	}
	if resp.DayOfYear < 1 || resp.DayOfYear > 366 {
		t.Fatalf("dayOfYear out of range: %d", resp.DayOfYear)
	}
}

func TestAchievementEndpoints(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	seedUser(t, gdb, "Ana", "ana", "senha-forte!", false)
	client := newAPIClient(newTestAPI(gdb))
	mustLogin(t, client, "ana", "senha-forte!")

	recorder := client.do(t, http.MethodPost, "/api/conquistas", gin.H{"conquistaId": "primeiro-dia"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	// Id fora da tabela fixa é recusado.
	recorder = client.do(t, http.MethodPost, "/api/conquistas", gin.H{"conquistaId": "invencivel"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown achievement, got %d", recorder.Code)
	}

	recorder = client.do(t, http.MethodGet, "/api/conquistas", nil)
	var ids []string
	decodeBody(t, recorder, &ids)
	if len(ids) != 1 || ids[0] != "primeiro-dia" {
		t.Fatalf("unexpected achievements: %v", ids)
	}

	// Avaliação contra um dia concluído: só a primeira conquista desbloqueada.
	client.do(t, http.MethodPost, "/api/progresso", gin.H{"dia": 1, "concluido": true})
	recorder = client.do(t, http.MethodGet, "/api/conquistas/avaliar", nil)
	var statuses []struct {
		ID           string `json:"id"`
		Desbloqueada bool   `json:"desbloqueada"`
	}
	decodeBody(t, recorder, &statuses)
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		want := status.ID == "primeiro-dia"
		if status.Desbloqueada != want {
			t.Fatalf("unexpected evaluation for %s: %v", status.ID, status.Desbloqueada)
		}
	}
}
