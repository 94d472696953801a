package filters

import (
	"photo-restorer/internal/opencv/safe"
)

// DetectFaces always reports that no faces are present. Face detection is
// disabled; the call exists so pipelines can branch on it later without a
// signature change.
func DetectFaces(src *safe.Mat) (bool, error) {
	if err := safe.ValidateMatForOperation(src, "detect faces"); err != nil {
		return false, err
	}
	return false, nil
}
