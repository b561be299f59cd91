package about

import (
	"net/http"
	"testing"

	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/testutil"
	"go.uber.org/zap"
)

func TestAreasFor_MarksViewerDashboard(t *testing.T) {
	tests := []struct {
		name string
		mine string
		want string
	}{
		{"admin", authz.AdminDashboardPath, "Administration"},
		{"teacher", authz.TeacherDashboardPath, "Teaching"},
		{"student", authz.StudentDashboardPath, "Learning"},
		{"visitor", authz.HomePath, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range areasFor(tt.mine) {
				if a.Yours {
					got = append(got, a.Name)
				}
			}
			if tt.want == "" {
				if len(got) != 0 {
					t.Errorf("areasFor(%q) marked %v, want none", tt.mine, got)
				}
				return
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("areasFor(%q) marked %v, want [%s]", tt.mine, got, tt.want)
			}
		})
	}
}

func TestServeAbout_DoesNotPanicBeforeRender(t *testing.T) {
	h := NewHandler(zap.NewNop())
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/about", testutil.TeacherUser())
	rec := testutil.NewRecorder()
	testutil.Serve(h.ServeAbout, rec, req)
}
