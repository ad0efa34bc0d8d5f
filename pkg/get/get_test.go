package get

import "testing"

func TestRemote(t *testing.T) {
	testcases := []struct {
		src      string
		expected bool
	}{
		{"steps.yaml", false},
		{"./relative/steps.yaml", false},
		{"/absolute/steps.yaml", false},
		{"https://example.com/steps.yaml", true},
		{"git::https://example.com/repo.git//steps.yaml", true},
		{"github.com/example/repo//steps.yaml", true},
		{"bitbucket.org/example/repo//steps.yaml", true},
		{"gitlab.com/example/repo//steps.yaml", true},
		{"s3::https://s3.amazonaws.com/bucket/steps.yaml", true},
	}

	for _, tc := range testcases {
		if actual := Remote(tc.src); actual != tc.expected {
			t.Errorf("Remote(%q) = %v, want %v", tc.src, actual, tc.expected)
		}
	}
}
