package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"
)

func TestCreateDormitoryHandler(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := newHandlerApp(2)
	app.Post("/api/dormitories", s.CreateDormitory)

	resp := postJSON(t, app, "/api/dormitories", map[string]interface{}{
		"number":   "C-301",
		"capacity": 4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created models.Dormitory
	decodeBody(t, resp, &created)
	if created.Status != models.DormitoryStatusActive {
		t.Fatalf("expected default active status, got %s", created.Status)
	}

	// dormitory numbers are unique
	resp = postJSON(t, app, "/api/dormitories", map[string]interface{}{
		"number":   "C-301",
		"capacity": 2,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestSetDormitoryStatusHandler(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	dormitory := models.Dormitory{Number: "C-302", Capacity: 2, Status: models.DormitoryStatusActive}
	if err := db.Create(&dormitory).Error; err != nil {
		t.Fatalf("create dormitory: %v", err)
	}

	app := newHandlerApp(2)
	app.Put("/api/dormitories/:id/status", s.SetDormitoryStatus)

	resp := putJSON(t, app, fmt.Sprintf("/api/dormitories/%d/status", dormitory.ID),
		map[string]string{"status": "maintenance"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated models.Dormitory
	decodeBody(t, resp, &updated)
	if updated.Status != models.DormitoryStatusMaintenance {
		t.Fatalf("expected maintenance, got %s", updated.Status)
	}

	resp = putJSON(t, app, "/api/dormitories/999/status",
		map[string]string{"status": "active"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestVacancyBoardHandler(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	dormitory := models.Dormitory{Number: "C-303", Capacity: 3, Status: models.DormitoryStatusActive, OccupiedCount: 1}
	if err := db.Create(&dormitory).Error; err != nil {
		t.Fatalf("create dormitory: %v", err)
	}
	occupancy := models.Occupancy{
		DormitoryID:     dormitory.ID,
		Slot:            2,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   1,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       2,
	}
	if err := db.Create(&occupancy).Error; err != nil {
		t.Fatalf("create occupancy: %v", err)
	}

	app := newHandlerApp(0)
	app.Get("/api/dormitories/board", s.VacancyBoard)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dormitories/board", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Board []service.BoardEntry `json:"board"`
		Count int                  `json:"count"`
	}
	decodeBody(t, resp, &body)
	if body.Count != 1 {
		t.Fatalf("expected 1 board entry, got %d", body.Count)
	}
	entry := body.Board[0]
	if entry.Vacancy != 2 {
		t.Fatalf("expected vacancy 2, got %d", entry.Vacancy)
	}
	if len(entry.FreeSlots) != 2 || entry.FreeSlots[0] != 1 || entry.FreeSlots[1] != 3 {
		t.Fatalf("expected free slots [1 3], got %v", entry.FreeSlots)
	}
}

func TestListDormitoryOccupanciesHandler(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	dormitory := models.Dormitory{Number: "C-304", Capacity: 2, Status: models.DormitoryStatusActive}
	if err := db.Create(&dormitory).Error; err != nil {
		t.Fatalf("create dormitory: %v", err)
	}

	app := newHandlerApp(2)
	app.Get("/api/dormitories/:id/occupancies", s.ListDormitoryOccupancies)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/dormitories/%d/occupancies", dormitory.ID), nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &body)
	if body.Count != 0 {
		t.Fatalf("expected empty history, got %d", body.Count)
	}

	// unknown dormitory yields not found, not an empty page
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/dormitories/999/occupancies", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
