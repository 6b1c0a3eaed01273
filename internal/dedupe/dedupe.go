package dedupe

// Package dedupe provides shared singleflight groups used to collapse
// identical concurrent reads. Lobby clients poll in lock-step after a battle
// ends, so leaderboard queries arrive in bursts; a centralized
// singleflight.Group ensures only one database read runs per key while other
// callers wait for the result.

import "golang.org/x/sync/singleflight"

// LeaderboardGroup deduplicates leaderboard reads keyed by the requested
// limit (e.g. "top:10").
var LeaderboardGroup singleflight.Group
