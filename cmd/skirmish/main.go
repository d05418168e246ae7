package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Garsondee/OpFor-Mind/internal/ai"
	"github.com/Garsondee/OpFor-Mind/internal/replay"
	"github.com/Garsondee/OpFor-Mind/internal/spectate"
)

type runStats struct {
	runIndex int
	seed     int64

	firstSightTick int
	firstCoverTick int
	firstThrowTick int
	firstEvadeTick int
	firstStuckTick int
	firstIntelTick int

	planChanges    int
	stateChanges   int
	bandChanges    int
	shotsFired     int
	grenadesThrown int
	muzzleBlocks   int
	coverClaims    int
	intelMerges    int
}

func main() {
	// Optional .env for deployment-style overrides; absence is normal.
	_ = godotenv.Load()

	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var replayPath string
	var listen string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base noise seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "hunt", "scenario name (hunt, ambush)")
	flag.StringVar(&replayPath, "replay", envOr("OPFOR_REPLAY_DB", ""), "sqlite replay db path (empty = no recording)")
	flag.StringVar(&listen, "listen", envOr("OPFOR_LISTEN", ""), "spectator websocket address (empty = headless)")
	flag.BoolVar(&verbose, "verbose", false, "verbose decision logging")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if runs <= 0 || ticks <= 0 {
		logger.Error("runs and ticks must be > 0", "runs", runs, "ticks", ticks)
		os.Exit(1)
	}
	if scenario != "hunt" && scenario != "ambush" {
		logger.Error("unsupported scenario", "scenario", scenario, "supported", "hunt, ambush")
		os.Exit(1)
	}

	var db *replay.DB
	if replayPath != "" {
		var err error
		db, err = replay.Open(replayPath)
		if err != nil {
			logger.Error("open replay db", "path", replayPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var hub *spectate.Hub
	if listen != "" {
		hub = spectate.NewHub(logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.HandleWS)
		go func() {
			logger.Info("spectator server listening", "addr", listen)
			if err := http.ListenAndServe(listen, mux); err != nil {
				logger.Error("spectator server stopped", "err", err)
			}
		}()
	}

	fmt.Printf("=== Skirmish Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		ar := buildScenario(scenario, seed, verbose)
		runArena(ar, ticks, hub)

		stats := collectStats(i+1, seed, ar)
		all = append(all, stats)
		printRun(stats)

		if db != nil {
			runID, err := db.SaveRun(scenario, seed, ticks, ar.Log.Entries())
			if err != nil {
				logger.Error("save replay", "err", err)
			} else {
				logger.Info("replay saved", "run_id", runID, "events", len(ar.Log.Entries()))
			}
		}
	}

	printAggregate(all)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildScenario(name string, seed int64, verbose bool) *ai.Arena {
	switch name {
	case "ambush":
		// Squad holds a chokepoint; the target walks through firing.
		return ai.NewArena(
			ai.WithArenaSize(1280, 720),
			ai.WithSeed(seed),
			ai.WithVerbose(verbose),
			ai.WithWall(560, 0, 40, 280),
			ai.WithWall(560, 440, 40, 280),
			ai.WithWall(300, 330, 120, 60),
			ai.WithAgent(ai.ClassRifle, 200, 300),
			ai.WithAgent(ai.ClassShotgun, 200, 420),
			ai.WithAgent(ai.ClassGrenadier, 120, 360),
			ai.WithTarget(1150, 360),
			ai.WithTargetPath(110, ai.Vec2{X: 640, Y: 360}, ai.Vec2{X: 1150, Y: 360}),
			ai.WithTargetFire(45),
		)
	default: // hunt
		// Target skirmishes then withdraws behind cover; squad hunts.
		return ai.NewArena(
			ai.WithArenaSize(1280, 720),
			ai.WithSeed(seed),
			ai.WithVerbose(verbose),
			ai.WithWall(620, 200, 60, 320),
			ai.WithWall(900, 100, 200, 40),
			ai.WithWall(900, 580, 200, 40),
			ai.WithAgent(ai.ClassRifle, 100, 300),
			ai.WithAgent(ai.ClassRifle, 100, 420),
			ai.WithAgent(ai.ClassSniper, 60, 360),
			ai.WithAgent(ai.ClassMelee, 160, 360),
			ai.WithTarget(1100, 360),
			ai.WithTargetPath(130,
				ai.Vec2{X: 760, Y: 360},
				ai.Vec2{X: 760, Y: 160},
				ai.Vec2{X: 1050, Y: 160},
				ai.Vec2{X: 1050, Y: 560}),
			ai.WithTargetFire(60),
		)
	}
}

func runArena(ar *ai.Arena, ticks int, hub *spectate.Hub) {
	for i := 0; i < ticks; i++ {
		ar.Step()
		if hub != nil && i%6 == 0 { // 10 Hz broadcast at 60 tps
			hub.Broadcast(spectate.SnapshotArena(ar))
			time.Sleep(time.Second / 60)
		}
	}
}

func collectStats(runIndex int, seed int64, ar *ai.Arena) runStats {
	entries := ar.Log.Entries()
	return runStats{
		runIndex: runIndex,
		seed:     seed,

		firstSightTick: firstTick(entries, "belief", "band", "high"),
		firstCoverTick: firstTick(entries, "cover", "assigned", ""),
		firstThrowTick: firstTick(entries, "grenade", "thrown", ""),
		firstEvadeTick: firstTick(entries, "grenade", "evading", ""),
		firstStuckTick: firstTick(entries, "error", "stuck_recovered", ""),
		firstIntelTick: firstTick(entries, "squad", "intel_merge", ""),

		planChanges:    ar.Log.CountCategory("plan", "select"),
		stateChanges:   ar.Log.CountCategory("state", "change"),
		bandChanges:    ar.Log.CountCategory("belief", "band"),
		shotsFired:     ar.Log.CountCategory("fire", "shot"),
		grenadesThrown: ar.Log.CountCategory("grenade", "thrown"),
		muzzleBlocks:   ar.Log.CountCategory("fire", "muzzle_blocked"),
		coverClaims:    ar.Log.CountCategory("cover", "assigned"),
		intelMerges:    ar.Log.CountCategory("squad", "intel_merge"),
	}
}

func firstTick(entries []ai.LogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_high_belief=%d first_cover=%d first_throw=%d first_evade=%d first_stuck=%d first_intel=%d\n",
		rs.firstSightTick, rs.firstCoverTick, rs.firstThrowTick, rs.firstEvadeTick, rs.firstStuckTick, rs.firstIntelTick)
	fmt.Printf("event_totals: plan_change=%d state_change=%d band_change=%d shots=%d grenades=%d muzzle_blocks=%d cover_claims=%d intel_merges=%d\n\n",
		rs.planChanges, rs.stateChanges, rs.bandChanges, rs.shotsFired, rs.grenadesThrown, rs.muzzleBlocks, rs.coverClaims, rs.intelMerges)
}

func printAggregate(all []runStats) {
	if len(all) == 0 {
		return
	}
	var plan, state, band, shots, grenades, blocks, claims, merges int
	evaded := 0
	for _, rs := range all {
		plan += rs.planChanges
		state += rs.stateChanges
		band += rs.bandChanges
		shots += rs.shotsFired
		grenades += rs.grenadesThrown
		blocks += rs.muzzleBlocks
		claims += rs.coverClaims
		merges += rs.intelMerges
		if rs.firstEvadeTick >= 0 {
			evaded++
		}
	}
	n := len(all)
	fmt.Printf("=== Aggregate (%d runs) ===\n", n)
	fmt.Printf("avg_per_run: plan_change=%.1f state_change=%.1f band_change=%.1f shots=%.1f grenades=%.1f muzzle_blocks=%.1f cover_claims=%.1f intel_merges=%.1f\n",
		avg(plan, n), avg(state, n), avg(band, n), avg(shots, n), avg(grenades, n), avg(blocks, n), avg(claims, n), avg(merges, n))
	fmt.Printf("runs_with_grenade_evasion: %d/%d\n", evaded, n)
}

func avg(total, n int) float64 {
	return float64(total) / float64(n)
}
