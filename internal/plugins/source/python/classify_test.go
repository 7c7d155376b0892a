package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		info ClassInfo
		want Decision
	}{
		{"name suffix Service", ClassInfo{Name: "UsersService", Path: "sdk/users.py"}, Accept},
		{"name suffix Api", ClassInfo{Name: "PetsApi", Path: "sdk/pets.py"}, Accept},
		{"name suffix API", ClassInfo{Name: "PetsAPI", Path: "sdk/pets.py"}, Accept},
		{"wrapper wins", ClassInfo{Name: "UsersServiceWithRawResponse", Path: "sdk/api/users.py"}, SkipWrapper},
		{"streaming wrapper", ClassInfo{Name: "ChatStreamingResponse"}, SkipWrapper},
		{"api path", ClassInfo{Name: "Things", Path: "sdk/api/things.py"}, Accept},
		{"api path case", ClassInfo{Name: "Things", Path: "SDK/API/things.py"}, Accept},
		{"api path backslash", ClassInfo{Name: "Things", Path: `sdk\api\things.py`}, Accept},
		{"apiresource base", ClassInfo{Name: "Files", Bases: []string{"AsyncAPIResource"}}, Accept},
		{"service base", ClassInfo{Name: "Files", Bases: []string{"object", "base.BaseService"}}, Accept},
		{"api base", ClassInfo{Name: "Files", Bases: []string{"RestApi"}}, Accept},
		{"plain", ClassInfo{Name: "Helper", Path: "sdk/util.py", Bases: []string{"object"}}, Reject},
		{"apis dir is not api", ClassInfo{Name: "Helper", Path: "sdk/apis/util.py"}, Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.info))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "wrapper", SkipWrapper.String())
	assert.Equal(t, "reject", Reject.String())
}
