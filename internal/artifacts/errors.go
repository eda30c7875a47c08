package artifacts

import "fmt"

// MissingArtifactError reports a load for a frozen artifact that was never
// built. It is a distinguished type because callers map it to a distinct
// failure mode (the HTTP layer answers 409): the fix is to run the build
// stage, never to regenerate silently.
type MissingArtifactError struct {
	JDHash string
	Path   string
}

func (e *MissingArtifactError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("requirements artifact not found: %s. Run the build stage first; no automatic regeneration", e.Path)
	}
	return fmt.Sprintf("requirements artifact not found for jd_hash=%.16s. Build requirements first with the same JD; no automatic regeneration", e.JDHash)
}
