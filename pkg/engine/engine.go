// Package engine ties the veiling pipeline together: a policy decision picks
// real or veiled, a profile resolves to distortion parameters, and a salted
// substream seeds the modality's distortion function. Callers keep the
// trusted reading; the engine only ever returns a copy or a veiled
// counterpart.
package engine

import (
	mrand "math/rand/v2"

	"dataveil/pkg/policy"
	"dataveil/pkg/profiles"
	"dataveil/pkg/randctl"
	"dataveil/pkg/structlog"
	"dataveil/pkg/veil"
)

// Sensor names used for profile tweaks and seed-derivation salts.
const (
	SensorDepth        = "depth"
	SensorLidar        = "lidar"
	SensorThermal      = "thermal"
	SensorRadar        = "radar"
	SensorIMU          = "imu"
	SensorRF           = "rf"
	SensorUltrasonic   = "ultrasonic"
	SensorBarometer    = "barometer"
	SensorMagnetometer = "magnetometer"
	SensorStereo       = "stereo"
	SensorFusion       = "fusion"
)

// Engine serves trusted or veiled readings per client. Profiles and policy
// are read-only after construction, so one engine may be shared across
// concurrent callers; every veiling call derives its own generator.
type Engine struct {
	profiles *profiles.Resolver
	policy   *policy.Resolver
	registry *veil.Registry
	seed     uint64
	log      *structlog.Logger
}

// New builds an engine. A zero masterSeed falls back to randctl.DefaultSeed;
// a nil logger gets a default one.
func New(pr *profiles.Resolver, po *policy.Resolver, masterSeed uint64, log *structlog.Logger) *Engine {
	if masterSeed == 0 {
		masterSeed = randctl.DefaultSeed
	}
	if log == nil {
		log = structlog.New("veil-engine", structlog.LevelInfo, nil)
	}
	return &Engine{
		profiles: pr,
		policy:   po,
		registry: veil.NewRegistry(),
		seed:     masterSeed,
		log:      log,
	}
}

// Registry exposes the custom-sensor registry for plugin registration.
func (e *Engine) Registry() *veil.Registry { return e.registry }

// Decide runs the policy lookup only, without touching any data.
func (e *Engine) Decide(client string, trust policy.Trust) policy.Decision {
	return e.policy.Resolve(client, trust)
}

// resolve produces the distortion parameters and generator for one veiled
// serve. The substream is keyed by client and sensor and salted with the
// profile, so no two (client, modality) streams correlate.
func (e *Engine) resolve(client, sensor, profile string) (profiles.Params, *mrand.Rand, error) {
	params, err := e.profiles.Params(profile, sensor)
	if err != nil {
		return profiles.Params{}, nil, err
	}
	seed := randctl.Derive(e.seed, params.Salt)
	rng := randctl.Stream(client+"/"+sensor, seed)
	return params, rng, nil
}

func (e *Engine) logServe(client, sensor string, d policy.Decision) {
	e.log.Info("serve", structlog.Fields{
		"client":  client,
		"sensor":  sensor,
		"view":    string(d.View),
		"profile": d.Profile,
	})
}

// ServeDepth serves a depth field according to policy.
func (e *Engine) ServeDepth(client string, trust policy.Trust, g veil.Grid) (veil.Grid, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorDepth, d)
	if d.View == policy.ViewReal {
		return g.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorDepth, d.Profile)
	if err != nil {
		return veil.Grid{}, d.View, err
	}
	out, err := veil.Depth(g, params.Strength, rng)
	return out, d.View, err
}

// ServeThermal serves a thermal field according to policy.
func (e *Engine) ServeThermal(client string, trust policy.Trust, g veil.Grid) (veil.Grid, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorThermal, d)
	if d.View == policy.ViewReal {
		return g.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorThermal, d.Profile)
	if err != nil {
		return veil.Grid{}, d.View, err
	}
	out, err := veil.Thermal(g, params.Strength, rng)
	return out, d.View, err
}

// ServeRadar serves a range-Doppler map according to policy.
func (e *Engine) ServeRadar(client string, trust policy.Trust, g veil.Grid) (veil.Grid, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorRadar, d)
	if d.View == policy.ViewReal {
		return g.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorRadar, d.Profile)
	if err != nil {
		return veil.Grid{}, d.View, err
	}
	out, err := veil.Radar(g, params.Strength, rng)
	return out, d.View, err
}

// ServeLidar serves an angle-indexed range scan according to policy.
func (e *Engine) ServeLidar(client string, trust policy.Trust, ranges []float64) ([]float64, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorLidar, d)
	if d.View == policy.ViewReal {
		out := make([]float64, len(ranges))
		copy(out, ranges)
		return out, d.View, nil
	}
	params, rng, err := e.resolve(client, SensorLidar, d.Profile)
	if err != nil {
		return nil, d.View, err
	}
	return veil.LidarRanges(ranges, params.Strength, rng), d.View, nil
}

// ServeLidarPoints serves a 3-D point cloud according to policy.
func (e *Engine) ServeLidarPoints(client string, trust policy.Trust, pts []veil.Point3) ([]veil.Point3, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorLidar, d)
	if d.View == policy.ViewReal {
		out := make([]veil.Point3, len(pts))
		copy(out, pts)
		return out, d.View, nil
	}
	params, rng, err := e.resolve(client, SensorLidar, d.Profile)
	if err != nil {
		return nil, d.View, err
	}
	return veil.LidarPoints(pts, params.Strength, rng), d.View, nil
}

// ServeIMU serves gyro/accel channels according to policy.
func (e *Engine) ServeIMU(client string, trust policy.Trust, s veil.IMUSeries) (veil.IMUSeries, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorIMU, d)
	if d.View == policy.ViewReal {
		return s.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorIMU, d.Profile)
	if err != nil {
		return veil.IMUSeries{}, d.View, err
	}
	out, err := veil.IMU(s, params.Strength, rng)
	return out, d.View, err
}

// ServeRF serves an RF power series according to policy.
func (e *Engine) ServeRF(client string, trust policy.Trust, s veil.Series) (veil.Series, policy.View, error) {
	return e.serveSeries(client, trust, SensorRF, s, veil.RF)
}

// ServeUltrasonic serves a ring-distance series according to policy.
func (e *Engine) ServeUltrasonic(client string, trust policy.Trust, s veil.Series) (veil.Series, policy.View, error) {
	return e.serveSeries(client, trust, SensorUltrasonic, s, veil.Ultrasonic)
}

// ServeBarometer serves a pressure series according to policy.
func (e *Engine) ServeBarometer(client string, trust policy.Trust, s veil.Series) (veil.Series, policy.View, error) {
	return e.serveSeries(client, trust, SensorBarometer, s, veil.Barometer)
}

type seriesFunc func(veil.Series, float64, *mrand.Rand) (veil.Series, error)

func (e *Engine) serveSeries(client string, trust policy.Trust, sensor string, s veil.Series, fn seriesFunc) (veil.Series, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, sensor, d)
	if d.View == policy.ViewReal {
		return s.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, sensor, d.Profile)
	if err != nil {
		return veil.Series{}, d.View, err
	}
	out, err := fn(s, params.Strength, rng)
	return out, d.View, err
}

// ServeMagnetometer serves a 3-axis magnetic series according to policy.
func (e *Engine) ServeMagnetometer(client string, trust policy.Trust, s veil.MagSeries) (veil.MagSeries, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorMagnetometer, d)
	if d.View == policy.ViewReal {
		return s.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorMagnetometer, d.Profile)
	if err != nil {
		return veil.MagSeries{}, d.View, err
	}
	out, err := veil.Magnetometer(s, params.Strength, rng)
	return out, d.View, err
}

// ServeStereo serves a stereo pair according to policy.
func (e *Engine) ServeStereo(client string, trust policy.Trust, left, right veil.Grid) (veil.Grid, veil.Grid, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorStereo, d)
	if d.View == policy.ViewReal {
		return left.Clone(), right.Clone(), d.View, nil
	}
	params, rng, err := e.resolve(client, SensorStereo, d.Profile)
	if err != nil {
		return veil.Grid{}, veil.Grid{}, d.View, err
	}
	vl, vr, err := veil.Stereo(left, right, params.Strength, rng)
	return vl, vr, d.View, err
}

// ServeFusion serves aligned 1-D series with a correlated veil.
func (e *Engine) ServeFusion(client string, trust policy.Trust, sensors map[string][]float64) (map[string][]float64, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, SensorFusion, d)
	if d.View == policy.ViewReal {
		out := make(map[string][]float64, len(sensors))
		for name, arr := range sensors {
			cp := make([]float64, len(arr))
			copy(cp, arr)
			out[name] = cp
		}
		return out, d.View, nil
	}
	params, rng, err := e.resolve(client, SensorFusion, d.Profile)
	if err != nil {
		return nil, d.View, err
	}
	out, err := veil.FusionSeries(sensors, params.Strength, rng)
	return out, d.View, err
}

// ServeCustom serves a registered plugin sensor according to policy.
func (e *Engine) ServeCustom(client string, trust policy.Trust, sensor string, data []float64) ([]float64, policy.View, error) {
	d := e.Decide(client, trust)
	e.logServe(client, sensor, d)
	if d.View == policy.ViewReal {
		out := make([]float64, len(data))
		copy(out, data)
		return out, d.View, nil
	}
	fn, err := e.registry.Lookup(sensor)
	if err != nil {
		return nil, d.View, err
	}
	params, rng, err := e.resolve(client, sensor, d.Profile)
	if err != nil {
		return nil, d.View, err
	}
	out, err := fn(data, params.Strength, rng)
	return out, d.View, err
}
