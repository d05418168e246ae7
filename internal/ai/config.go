package ai

// TickRate is the fixed simulation rate assumed by per-second tuning
// values. Durations in Tuning are expressed in seconds and converted
// with SecondsToTicks.
const TickRate = 60

// SecondsToTicks converts a duration in seconds to whole ticks.
func SecondsToTicks(s float64) int {
	return int(s * TickRate)
}

// Tuning holds every behavioural threshold in one place. All values
// were settled by iterative behavioural feedback, not derivation —
// treat them as balancing knobs, not correctness constants.
type Tuning struct {
	// --- Belief ---
	ConfidenceSight      float64 // direct visual contact
	ConfidenceGunshot    float64 // heard a shot
	ConfidenceReload     float64 // reload / empty-click sounds
	ConfidenceLightBeam  float64 // flashlight sweep
	ConfidenceFootstep   float64 // movement noise
	IntelAttenuation     float64 // per-hop squad intel multiplier
	BeliefDecayPerSecond float64 // linear confidence loss per second
	BandHigh             float64 // >= : certain
	BandMedium           float64 // >= : probable
	BandLow              float64 // >= : suspected
	BandLost             float64 // <  : position cleared
	BandLostRecover      float64 // >= to leave Lost (hysteresis)

	// --- Perception ---
	HearingMaxRange    float64 // sounds beyond this are inaudible
	OccludedSoundMul   float64 // walls muffle, never fully block
	MinHeardStrength   float64 // below this a sound is ignored
	SightStrengthRange float64 // sight strength fades to 0 at this distance

	// --- Prediction ---
	FlankOffset        float64 // perpendicular flank hypothesis distance
	ShotDirProjection  float64 // distance projected along last shot bearing
	TargetMaxSpeed     float64 // assumed adversary speed for expansion ring
	StylePerturbAmp    float64 // max fractional weight perturbation
	StyleWindowSeconds float64 // rolling classifier evidence window

	// --- Planner / engagement ---
	HealthCriticalFrac float64 // health fraction considered critical
	HealthWoundedFrac  float64 // health fraction considered wounded
	MeleeRange         float64 // melee engagement distance
	ShortRange         float64 // close-quarters band
	FarRange           float64 // beyond effective engagement

	// --- Executor ---
	SuppressSeconds    float64 // sustained incoming fire before counting as pinned
	StuckSeconds       float64 // no-progress window forcing Searching
	StuckMinProgress   float64 // movement below this counts as stalled
	GrenadeThreatRadius float64 // live grenade distance triggering evasion
	EvadeSeconds       float64 // duration of the evasion interrupt
	DodgeStep          float64 // lateral dodge distance
	DodgeCooldownSeconds float64
	MuzzleProbeDist    float64 // obstacle probe length ahead of the muzzle
	RepositionStep     float64 // lateral step used to clear a blocked muzzle
	SearchSweepRadius  float64 // search orbit radius around last suspicion

	// --- Cover ---
	CoverProtectionWeight float64
	CoverDistanceWeight   float64
	CoverClusterWeight    float64 // penalty per nearby claimed ally
	CoverClusterRadius    float64
	CoverMaxDist          float64 // candidates beyond this are ignored
	CoverArcRays          int     // occlusion rays across the danger arc
	CoverArcWidth         float64 // radians of the sampled danger arc

	// --- Grenades ---
	BlastRadius            float64
	SafetyMargin           float64
	GrenadeCooldownSeconds float64 // reactive combat throws
	PassageCooldownSeconds float64 // passage-clearing throws
	PassageThrowDist       float64 // fixed point ahead of the agent
	PassageProbeWidth      float64 // corridor side-probe distance
	SafeThrowBandMin       float64 // specialist direct-sight throw band
	SafeThrowBandMax       float64
	SuppressedHiddenSeconds float64 // trigger: pinned with target hidden
	ApproachSpeedFrac      float64 // trigger: under fire while closing fast
	AllyDeathWindowSeconds float64
	AllyDeathCount         int
	SustainedFireSeconds   float64
	HiddenSuspicionSeconds float64 // medium+ suspicion, target hidden

	// --- Squad ---
	BroadcastMinConfidence float64 // below this an agent stays quiet
	ClaimRadius            float64 // two claims inside this collide
}

// DefaultTuning returns the balance settings shipped with the game.
func DefaultTuning() *Tuning {
	return &Tuning{
		ConfidenceSight:      1.0,
		ConfidenceGunshot:    0.7,
		ConfidenceReload:     0.6,
		ConfidenceLightBeam:  0.5,
		ConfidenceFootstep:   0.4,
		IntelAttenuation:     0.9,
		BeliefDecayPerSecond: 0.08, // HIGH to LOST in ~12s of silence
		BandHigh:             0.8,
		BandMedium:           0.5,
		BandLow:              0.3,
		BandLost:             0.05,
		BandLostRecover:      0.10,

		HearingMaxRange:    1400,
		OccludedSoundMul:   0.40,
		MinHeardStrength:   0.12,
		SightStrengthRange: 900,

		FlankOffset:        120,
		ShotDirProjection:  160,
		TargetMaxSpeed:     140,
		StylePerturbAmp:    0.25,
		StyleWindowSeconds: 20,

		HealthCriticalFrac: 0.25,
		HealthWoundedFrac:  0.6,
		MeleeRange:         28,
		ShortRange:         160,
		FarRange:           450,

		SuppressSeconds:      1.0,
		StuckSeconds:         4.0,
		StuckMinProgress:     12,
		GrenadeThreatRadius:  110,
		EvadeSeconds:         1.2,
		DodgeStep:            48,
		DodgeCooldownSeconds: 1.5,
		MuzzleProbeDist:      40,
		RepositionStep:       36,
		SearchSweepRadius:    140,

		CoverProtectionWeight: 2.0,
		CoverDistanceWeight:   1.0,
		CoverClusterWeight:    0.6,
		CoverClusterRadius:    64,
		CoverMaxDist:          360,
		CoverArcRays:          5,
		CoverArcWidth:         1.1,

		BlastRadius:             90,
		SafetyMargin:            40,
		GrenadeCooldownSeconds:  8,
		PassageCooldownSeconds:  4,
		PassageThrowDist:        150,
		PassageProbeWidth:       56,
		SafeThrowBandMin:        180,
		SafeThrowBandMax:        340,
		SuppressedHiddenSeconds: 3.0,
		ApproachSpeedFrac:       0.7,
		AllyDeathWindowSeconds:  10,
		AllyDeathCount:          2,
		SustainedFireSeconds:    2.5,
		HiddenSuspicionSeconds:  4.0,

		BroadcastMinConfidence: 0.3,
		ClaimRadius:            48,
	}
}
