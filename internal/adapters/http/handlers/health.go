// Package handlers serves the motivation API and the /-/ operational endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// BuildInfo identifies the running binary on GET /-/build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo takes the ldflags values. An empty commit or build time is
// filled from the VCS stamp the go tool embeds, when there is one.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	bi := BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		bi = bi.withVCS(info.Settings)
	}

	return bi
}

func (bi BuildInfo) withVCS(settings []debug.BuildSetting) BuildInfo {
	for _, s := range settings {
		switch {
		case s.Key == "vcs.revision" && bi.Commit == "":
			bi.Commit = s.Value
		case s.Key == "vcs.time" && bi.BuildTime == "":
			bi.BuildTime = s.Value
		}
	}
	return bi
}

// HealthHandler serves liveness, readiness, build info and Prometheus metrics under /-/.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler returns a handler backed by registry. A nil registry
// reports ready with no checks.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
}

type statusResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers 200 while the process can serve requests. It checks
// nothing else.
func (h *HealthHandler) Liveness(c *gin.Context) {
	noStore(c)
	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Readiness runs the registered checks. Only an unhealthy result answers
// 503: a collection held in session storage is degraded but still served.
func (h *HealthHandler) Readiness(c *gin.Context) {
	noStore(c)

	if h.registry == nil {
		c.JSON(http.StatusOK, statusResponse{Status: string(ports.HealthStatusHealthy)})
		return
	}

	result := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, statusResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// Build answers with the build information.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// Register mounts the endpoints on engine:
//
//	GET /-/live
//	GET /-/ready
//	GET /-/build
//	GET /-/metrics
func (h *HealthHandler) Register(engine *gin.Engine) {
	internal := engine.Group("/-")
	internal.GET("/live", h.Liveness)
	internal.GET("/ready", h.Readiness)
	internal.GET("/build", h.Build)
	internal.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}
