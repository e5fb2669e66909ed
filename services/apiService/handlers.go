package apiService

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"pickLabsEngine/models"
	"pickLabsEngine/services/aiService"
	"pickLabsEngine/services/oddsService"
	"pickLabsEngine/services/quotaService"
	"pickLabsEngine/services/slipService"
	"pickLabsEngine/services/ticketService"
)

// Handler holds the session's engine services. Validation errors map to
// 4xx responses; upstream degradation never becomes a 5xx here.
type Handler struct {
	Slip     *slipService.BetSlip
	Bankroll *ticketService.Bankroll
	Ledger   *ticketService.Ledger
	Engine   *aiService.Engine
	Quota    *quotaService.Service

	// Mu serializes all access to the slip, bankroll and ledger. Those
	// services are single-writer; chi runs each request on its own
	// goroutine, so the handlers take this lock, and the resolution
	// sweep shares it.
	Mu *sync.Mutex

	// Premium sessions skip the free-tier quota.
	Premium bool
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "picklabs-engine",
	})
}

// slipView decorates the raw picks with the combined parlay line and
// potential winnings so the UI renders from one response.
type slipView struct {
	Picks        []models.Pick `json:"picks"`
	CombinedOdds string        `json:"combinedOdds"`
	TotalStake   float64       `json:"totalStake"`
	ToWin        float64       `json:"toWin"`
}

func (h *Handler) GetSlip(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	view := h.slipView()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) AddPick(w http.ResponseWriter, r *http.Request) {
	var pick models.Pick
	if err := json.NewDecoder(r.Body).Decode(&pick); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid pick: %v", err))
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	removed, err := h.Slip.Add(pick)
	switch {
	case errors.Is(err, slipService.ErrSlipFull):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, slipService.ErrGameFinished):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"toggledOff": removed,
		"slip":       h.slipView(),
	})
}

func (h *Handler) RemovePick(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	h.Slip.Remove(chi.URLParam(r, "pickID"))
	view := h.slipView()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, view)
}

// RefreshAIPicks runs one recommendation pass and swaps the slip's AI
// picks for the result. Overlapping refreshes are no-ops; an empty
// feed is reported as a distinct no-data condition, not a failure.
// The in-flight check runs before the quota spend so a refused refresh
// never burns a free-tier use. The refresh itself runs outside the
// session lock; only the slip swap at the end takes it.
func (h *Handler) RefreshAIPicks(w http.ResponseWriter, r *http.Request) {
	if h.Engine.Busy() {
		respondError(w, http.StatusConflict, aiService.ErrRefreshInFlight.Error())
		return
	}

	if !h.Premium {
		if _, err := h.Quota.Increment(); err != nil {
			if errors.Is(err, quotaService.ErrQuotaExceeded) {
				respondError(w, http.StatusForbidden, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	date := time.Now().Format("20060102")
	picks, err := h.Engine.Recommend(date)
	switch {
	case errors.Is(err, aiService.ErrRefreshInFlight):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, aiService.ErrNoGames):
		h.Mu.Lock()
		view := h.slipView()
		h.Mu.Unlock()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"noData": true,
			"slip":   view,
		})
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Mu.Lock()
	h.Slip.ReplaceAIPicks(picks)
	view := h.slipView()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"noData": false,
		"slip":   view,
	})
}

func (h *Handler) GetBankroll(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	balance := h.Bankroll.Balance()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (h *Handler) GetActiveTickets(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	active := h.Ledger.Active()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, active)
}

func (h *Handler) GetTicketHistory(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	history := h.Ledger.History()
	h.Mu.Unlock()
	respondJSON(w, http.StatusOK, history)
}

type placeTicketRequest struct {
	Stake float64 `json:"stake"`
}

// PlaceTicket copies the whole slip into a new active ticket and clears
// the slip.
func (h *Handler) PlaceTicket(w http.ResponseWriter, r *http.Request) {
	var req placeTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Stake <= 0 {
		respondError(w, http.StatusBadRequest, "stake must be positive")
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	ticket, err := h.Ledger.Place(h.Slip.Picks(), req.Stake)
	if err != nil {
		if errors.Is(err, ticketService.ErrEmptyTicket) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.Slip.Clear()

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"ticket":  ticket,
		"balance": h.Bankroll.Balance(),
	})
}

type resolveTicketRequest struct {
	Status string  `json:"status"`
	Stake  float64 `json:"stake"`
	Payout float64 `json:"payout"`
}

func (h *Handler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	var index int
	if _, err := fmt.Sscanf(chi.URLParam(r, "index"), "%d", &index); err != nil {
		respondError(w, http.StatusBadRequest, "ticket index must be a number")
		return
	}

	var req resolveTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	resolved, err := h.Ledger.Resolve(index, req.Status, req.Stake, req.Payout)
	switch {
	case errors.Is(err, ticketService.ErrTicketIndex):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ticketService.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"resolved": resolved,
		"balance":  h.Bankroll.Balance(),
	})
}

func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	state, err := h.Quota.State()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uses":        state.Uses,
		"limit":       quotaService.MaxFreeUses,
		"windowStart": state.WindowStart,
	})
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"view": h.Quota.CurrentView("live-board"),
	})
}

func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.View == "" {
		respondError(w, http.StatusBadRequest, "view is required")
		return
	}
	if err := h.Quota.SetCurrentView(req.View); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"view": req.View})
}

// slipView snapshots the slip. Callers must hold Mu.
func (h *Handler) slipView() slipView {
	picks := h.Slip.Picks()
	combined := oddsService.CombinedOdds(picks)

	totalStake := 0.0
	for _, pick := range picks {
		totalStake += pick.Stake
	}

	return slipView{
		Picks:        picks,
		CombinedOdds: combined,
		TotalStake:   totalStake,
		ToWin:        oddsService.Winnings(totalStake, combined),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
