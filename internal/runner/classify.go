package runner

import "github.com/polymute/polymute/internal/mutation"

// Classify maps a spawn's raw result to the mutant outcome taxonomy of §4.6.
func Classify(o SpawnOutcome) mutation.Outcome {
	switch {
	case o.TimedOut:
		return mutation.Timeout
	case o.SpawnFailed:
		return mutation.Unviable
	case o.ExitCode != 0:
		return mutation.Killed
	default:
		return mutation.Survived
	}
}
