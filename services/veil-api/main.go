package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dataveil/pkg/config"
	"dataveil/pkg/engine"
	"dataveil/pkg/policy"
	"dataveil/pkg/profiles"
	"dataveil/pkg/ratelimit"
	"dataveil/pkg/structlog"
	"dataveil/pkg/veil"
)

// Prometheus metrics
var (
	mRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dataveil", Subsystem: "api", Name: "requests_total", Help: "Veil requests by sensor and served view."},
		[]string{"sensor", "view"},
	)
	mDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "dataveil", Subsystem: "api", Name: "request_seconds", Help: "Veil request duration.", Buckets: prometheus.DefBuckets},
		[]string{"sensor"},
	)
	mRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dataveil", Subsystem: "api", Name: "rate_limited_total", Help: "Requests rejected by the per-client limiter."},
	)
)

func init() {
	_ = prometheus.Register(mRequests)
	_ = prometheus.Register(mDuration)
	_ = prometheus.Register(mRateLimited)
}

type VeilService struct {
	eng     *engine.Engine
	limiter *ratelimit.Limiter
	log     *structlog.Logger
}

// allow enforces the per-client budget. An empty client still gets limited,
// under a shared anonymous bucket.
func (vs *VeilService) allow(w http.ResponseWriter, client string) bool {
	key := client
	if key == "" {
		key = "anonymous"
	}
	ok, _, reset := vs.limiter.Allow(key)
	if !ok {
		mRateLimited.Inc()
		w.Header().Set("Retry-After", reset.UTC().Format(http.TimeFormat))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}
	return ok
}

type depthRequest struct {
	Client string    `json:"client"`
	Trust  string    `json:"trust"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Data   []float64 `json:"data"`
}

type depthResponse struct {
	Token string    `json:"token"`
	View  string    `json:"view"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Data  []float64 `json:"data"`
}

type lidarRequest struct {
	Client string    `json:"client"`
	Trust  string    `json:"trust"`
	Ranges []float64 `json:"ranges"`
}

type lidarResponse struct {
	Token  string    `json:"token"`
	View   string    `json:"view"`
	Ranges []float64 `json:"ranges"`
}

type imuRequest struct {
	Client string    `json:"client"`
	Trust  string    `json:"trust"`
	T      []float64 `json:"t"`
	Gx     []float64 `json:"gx"`
	Gy     []float64 `json:"gy"`
	Gz     []float64 `json:"gz"`
	Ax     []float64 `json:"ax"`
	Ay     []float64 `json:"ay"`
	Az     []float64 `json:"az"`
}

type imuResponse struct {
	Token string    `json:"token"`
	View  string    `json:"view"`
	T     []float64 `json:"t"`
	Gx    []float64 `json:"gx"`
	Gy    []float64 `json:"gy"`
	Gz    []float64 `json:"gz"`
	Ax    []float64 `json:"ax"`
	Ay    []float64 `json:"ay"`
	Az    []float64 `json:"az"`
}

func (vs *VeilService) handleDepth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	var req depthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !vs.allow(w, req.Client) {
		return
	}
	g := veil.Grid{Rows: req.Rows, Cols: req.Cols, Data: req.Data}
	out, view, err := vs.eng.ServeDepth(req.Client, policy.Trust(req.Trust), g)
	if err != nil {
		vs.fail(w, "depth", err)
		return
	}
	mRequests.WithLabelValues("depth", string(view)).Inc()
	mDuration.WithLabelValues("depth").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, depthResponse{
		Token: uuid.New().String(),
		View:  string(view),
		Rows:  out.Rows,
		Cols:  out.Cols,
		Data:  out.Data,
	})
}

func (vs *VeilService) handleLidar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	var req lidarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !vs.allow(w, req.Client) {
		return
	}
	out, view, err := vs.eng.ServeLidar(req.Client, policy.Trust(req.Trust), req.Ranges)
	if err != nil {
		vs.fail(w, "lidar", err)
		return
	}
	mRequests.WithLabelValues("lidar", string(view)).Inc()
	mDuration.WithLabelValues("lidar").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, lidarResponse{
		Token:  uuid.New().String(),
		View:   string(view),
		Ranges: out,
	})
}

func (vs *VeilService) handleIMU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	var req imuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !vs.allow(w, req.Client) {
		return
	}
	series := veil.IMUSeries{T: req.T, Gx: req.Gx, Gy: req.Gy, Gz: req.Gz, Ax: req.Ax, Ay: req.Ay, Az: req.Az}
	out, view, err := vs.eng.ServeIMU(req.Client, policy.Trust(req.Trust), series)
	if err != nil {
		vs.fail(w, "imu", err)
		return
	}
	mRequests.WithLabelValues("imu", string(view)).Inc()
	mDuration.WithLabelValues("imu").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, imuResponse{
		Token: uuid.New().String(),
		View:  string(view),
		T:     out.T, Gx: out.Gx, Gy: out.Gy, Gz: out.Gz, Ax: out.Ax, Ay: out.Ay, Az: out.Az,
	})
}

func (vs *VeilService) fail(w http.ResponseWriter, sensor string, err error) {
	vs.log.Error("veil request failed", structlog.Fields{"sensor": sensor, "error": err.Error()})
	switch {
	case errors.Is(err, veil.ErrInvalidShape):
		http.Error(w, "invalid shape", http.StatusBadRequest)
	case errors.Is(err, profiles.ErrUnknownProfile):
		http.Error(w, "unknown profile", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	port := getenv("PORT", "8095")
	profilesPath := getenv("VEIL_PROFILES_PATH", "")
	policyPath := getenv("VEIL_POLICY_PATH", "")

	log := structlog.New("veil-api", structlog.LevelInfo, nil)

	overrides := map[string]profiles.Override{}
	if profilesPath != "" {
		loaded, err := config.LoadProfiles(profilesPath)
		if err != nil {
			log.Error("load profiles failed", structlog.Fields{"path": profilesPath, "error": err.Error()})
			os.Exit(1)
		}
		overrides = loaded
	}

	var rules []policy.Rule
	if policyPath != "" {
		loaded, err := config.LoadPolicies(policyPath)
		if err != nil {
			log.Error("load policies failed", structlog.Fields{"path": policyPath, "error": err.Error()})
			os.Exit(1)
		}
		rules = loaded
	}

	rateLimit, err := strconv.Atoi(getenv("VEIL_RATE_LIMIT", "120"))
	if err != nil || rateLimit < 1 {
		rateLimit = 120
	}

	eng := engine.New(profiles.NewResolver(overrides), policy.NewResolver(rules), 0, log)
	svc := &VeilService{
		eng:     eng,
		limiter: ratelimit.New(rateLimit, time.Minute),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/veil/depth", svc.handleDepth)
	mux.HandleFunc("/veil/lidar", svc.handleLidar)
	mux.HandleFunc("/veil/imu", svc.handleIMU)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("veil-api listening", structlog.Fields{"port": port})
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server exited", structlog.Fields{"error": err.Error()})
		os.Exit(1)
	}
}
