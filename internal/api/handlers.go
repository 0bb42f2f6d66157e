package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/economics"
	"github.com/mcdsl/watercarry/internal/sim"
	"github.com/mcdsl/watercarry/internal/treatment"
)

type errResp struct {
	Err string `json:"err"`
}

type treatmentResp struct {
	Treatment TreatmentState `json:"treatment"`
	Err       string         `json:"err,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// intOr returns def when key is absent.
func intOr(r *http.Request, key string, def int) (int, string) {
	v, ok, msg := parseInt(r, key)
	if msg != "" || !ok {
		return def, msg
	}
	return v, ""
}

// Handler serves one Session over HTTP.
type Handler struct {
	s *Session
}

// Router mounts every simulation endpoint on a chi router.
func Router(s *Session) chi.Router {
	h := &Handler{s: s}
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))
	r.Use(h.recoverer)

	r.Get("/state", h.State)
	r.Post("/tick", h.Tick)
	r.Post("/pause", h.Pause)
	r.Post("/resume", h.Resume)
	r.Post("/reward", h.Reward)
	r.Post("/payment", h.Payment)
	r.Route("/payload", func(rr chi.Router) {
		rr.Post("/increase", h.PayloadIncrease)
		rr.Post("/decrease", h.PayloadDecrease)
	})
	r.Post("/deliver", h.Deliver)
	r.Post("/spill", h.Spill)
	r.Route("/treatment", func(rr chi.Router) {
		rr.Get("/", h.Treatment)
		rr.Post("/pay", h.purchase(treatment.ObtainPay))
		rr.Post("/wait", h.purchase(treatment.ObtainWait))
	})
	r.Post("/tutorial/advance", h.TutorialAdvance)
	r.Get("/plan/economics", h.Economics)
	return r
}

// recoverer reports handler panics to Sentry and answers 500.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.s.log.Errorf("handler panic on %s %s: %v", r.Method, r.URL.Path, err)
				hub := sentry.CurrentHub().Clone()
				hub.ConfigureScope(func(scope *sentry.Scope) {
					scope.SetTag("session", h.s.ID)
					scope.SetTag("path", r.URL.Path)
				})
				hub.Recover(err)
				hub.Flush(time.Second * 5)
				writeJSON(w, http.StatusInternalServerError, errResp{Err: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	st := h.s.Snapshot()
	if r.URL.Query().Get("format") != "protojson" {
		writeJSON(w, http.StatusOK, st)
		return
	}
	b, err := protoJSON(st)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Err: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	dt, ok, msg := parseFloat(r, "dt")
	if !ok {
		if msg == "" {
			msg = "missing param dt"
		}
		badRequest(w, msg)
		return
	}
	if dt < 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		badRequest(w, "dt must be a finite number >= 0")
		return
	}
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.Advance(dt) }))
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.Pause() }))
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.Resume() }))
}

func (h *Handler) Reward(w http.ResponseWriter, r *http.Request) {
	amount, ok, msg := parseFloat(r, "amount")
	if !ok {
		if msg == "" {
			msg = "missing param amount"
		}
		badRequest(w, msg)
		return
	}
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.PayReward(amount) }))
}

func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		badRequest(w, "invalid enabled")
		return
	}
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.TogglePayment(on) }))
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request, fn func(m *sim.Manager, n int)) {
	n, msg := intOr(r, "n", 1)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	if n < 0 {
		badRequest(w, "n must be >= 0")
		return
	}
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { fn(m, n) }))
}

func (h *Handler) PayloadIncrease(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, (*sim.Manager).IncreasePayload)
}

func (h *Handler) PayloadDecrease(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, (*sim.Manager).DecreasePayload)
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, (*sim.Manager).RegisterDelivery)
}

func (h *Handler) Spill(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.s.Apply(func(m *sim.Manager) { m.RegisterSpill() }))
}

func (h *Handler) Treatment(w http.ResponseWriter, r *http.Request) {
	var ts TreatmentState
	h.s.Do(func(m *sim.Manager) { ts = treatmentState(m) })
	writeJSON(w, http.StatusOK, treatmentResp{Treatment: ts})
}

func (h *Handler) purchase(kind treatment.ObtainType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ts TreatmentState
		err := h.s.DoErr(func(m *sim.Manager) error {
			err := m.PurchaseTreatment(kind)
			ts = treatmentState(m)
			return err
		})
		resp := treatmentResp{Treatment: ts}
		code := http.StatusOK
		if err != nil {
			resp.Err = err.Error()
			code = http.StatusConflict
		}
		writeJSON(w, code, resp)
	}
}

func (h *Handler) TutorialAdvance(w http.ResponseWriter, r *http.Request) {
	var steps []sim.TutorialStep
	if name := r.URL.Query().Get("step"); name != "" {
		step, ok := sim.ParseTutorialStep(name)
		if !ok {
			badRequest(w, "invalid step")
			return
		}
		steps = append(steps, step)
	}
	st, err := h.s.ApplyErr(func(m *sim.Manager) error { return m.AdvanceTutorialStep(steps...) })
	if err != nil {
		writeJSON(w, http.StatusConflict, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Economics(w http.ResponseWriter, r *http.Request) {
	day, ok, msg := parseInt(r, "day")
	if !ok {
		if msg == "" {
			msg = "missing param day"
		}
		badRequest(w, msg)
		return
	}
	step, ok, msg := parseFloat(r, "step")
	if msg != "" {
		badRequest(w, msg)
		return
	}
	if !ok {
		step = 1
	}
	trials, msg := intOr(r, "trials", 1000)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	if trials > maxReportTrials {
		badRequest(w, fmt.Sprintf("trials must be <= %d", maxReportTrials))
		return
	}

	var (
		dc    config.DayConfiguration
		found bool
	)
	h.s.Do(func(m *sim.Manager) { dc, found = m.Plan().Day(day) })

	// DayReport only reads the day's parameters; no lock held
	var (
		rep economics.Report
		err error
	)
	if !found || day == 0 {
		err = fmt.Errorf("%w: no day %d", errNotFound, day)
	} else {
		rep, err = economics.DayReport(dc, economics.ReportOptions{Step: step, Trials: trials})
	}
	switch {
	case errors.Is(err, errNotFound):
		writeJSON(w, http.StatusNotFound, errResp{Err: err.Error()})
	case err != nil:
		badRequest(w, err.Error())
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

const maxReportTrials = 100_000

var errNotFound = errors.New("not found")
