package dataset

import (
	"fmt"
	"strings"

	"github.com/Khayman1/titanic-streamlit/schema"
)

// Resource names one of the three CSV files of the dataset.
type Resource string

const (
	Train      Resource = "train"
	Test       Resource = "test"
	Submission Resource = "submission"
)

// Resources returns every resource in display order.
func Resources() []Resource {
	return []Resource{Train, Test, Submission}
}

// ParseResource accepts a resource name, its default file name, or the
// file name without extension ("gender_submission").
func ParseResource(s string) (Resource, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".csv")
	switch key {
	case "train":
		return Train, nil
	case "test":
		return Test, nil
	case "submission", "gender_submission":
		return Submission, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// Contract returns the column contract the resource is validated against.
func (r Resource) Contract() schema.Resource {
	switch r {
	case Test:
		return schema.Test
	case Submission:
		return schema.Submission
	default:
		return schema.Train
	}
}

func (r Resource) valid() bool {
	return r == Train || r == Test || r == Submission
}

// Files maps each resource to its file name inside the data source.
type Files map[Resource]string

// DefaultFiles returns the Kaggle file names.
func DefaultFiles() Files {
	return Files{
		Train:      "train.csv",
		Test:       "test.csv",
		Submission: "gender_submission.csv",
	}
}

// Name returns the file name for res, falling back to the default.
func (f Files) Name(res Resource) string {
	if name, ok := f[res]; ok && name != "" {
		return name
	}
	return DefaultFiles()[res]
}

// Lookup returns the resource stored under file name, if any.
func (f Files) Lookup(name string) (Resource, bool) {
	for _, res := range Resources() {
		if f.Name(res) == name {
			return res, true
		}
	}
	return "", false
}
