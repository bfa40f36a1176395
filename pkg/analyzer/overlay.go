package analyzer

import "github.com/chicogong/route-recorder/pkg/routemodel"

// buildOverlayHooks derives a small, deterministic set of annotation
// events from the point sequence: the highest elevation, the steepest
// single-segment climb, and (for routes with a closure point) the
// turnaround.
func buildOverlayHooks(points []routemodel.RoutePoint) []routemodel.OverlayHook {
	if len(points) == 0 {
		return nil
	}

	var hooks []routemodel.OverlayHook

	if hook, ok := peakHook(points); ok {
		hooks = append(hooks, hook)
	}
	if hook, ok := steepestClimbHook(points); ok {
		hooks = append(hooks, hook)
	}
	if hook, ok := turnaroundHook(points); ok {
		hooks = append(hooks, hook)
	}

	return hooks
}

func progressAt(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func peakHook(points []routemodel.RoutePoint) (routemodel.OverlayHook, bool) {
	bestIdx := -1
	var bestElev float64
	for i, p := range points {
		if p.Elevation == nil {
			continue
		}
		if bestIdx == -1 || *p.Elevation > bestElev {
			bestIdx = i
			bestElev = *p.Elevation
		}
	}
	if bestIdx == -1 {
		return routemodel.OverlayHook{}, false
	}
	return routemodel.OverlayHook{
		Kind:     "peak",
		Label:    "Highest point",
		Progress: progressAt(bestIdx, len(points)),
	}, true
}

func steepestClimbHook(points []routemodel.RoutePoint) (routemodel.OverlayHook, bool) {
	bestIdx := -1
	var bestDelta float64
	for i := 1; i < len(points); i++ {
		if points[i].Elevation == nil || points[i-1].Elevation == nil {
			continue
		}
		delta := *points[i].Elevation - *points[i-1].Elevation
		if delta > bestDelta {
			bestDelta = delta
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return routemodel.OverlayHook{}, false
	}
	return routemodel.OverlayHook{
		Kind:     "steepest_climb",
		Label:    "Steepest climb",
		Progress: progressAt(bestIdx, len(points)),
	}, true
}

// turnaroundHook marks the point farthest from the start, a reasonable
// proxy for "turnaround" on out-and-back style routes.
func turnaroundHook(points []routemodel.RoutePoint) (routemodel.OverlayHook, bool) {
	if len(points) < 3 {
		return routemodel.OverlayHook{}, false
	}
	start := points[0]
	bestIdx := 0
	var bestDist float64
	for i, p := range points {
		d := haversineM(start.Lat, start.Lon, p.Lat, p.Lon)
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx == 0 || bestIdx == len(points)-1 {
		return routemodel.OverlayHook{}, false
	}
	return routemodel.OverlayHook{
		Kind:     "turnaround",
		Label:    "Turnaround point",
		Progress: progressAt(bestIdx, len(points)),
	}, true
}
