package version

import (
	"runtime"

	"github.com/metal-toolbox/xapictl/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GitCommit  string
	GitBranch  string
	GitSummary string
	BuildDate  string
	AppVersion string
	GoVersion  = runtime.Version()
)

type Version struct {
	GitCommit  string `json:"git_commit"`
	GitBranch  string `json:"git_branch"`
	GitSummary string `json:"git_summary"`
	BuildDate  string `json:"build_date"`
	AppVersion string `json:"app_version"`
	GoVersion  string `json:"go_version"`
}

func Current() Version {
	return Version{
		GitBranch:  GitBranch,
		GitCommit:  GitCommit,
		GitSummary: GitSummary,
		BuildDate:  BuildDate,
		AppVersion: AppVersion,
		GoVersion:  GoVersion,
	}
}

// UserAgent returns the User-Agent header value sent on API requests.
func UserAgent() string {
	v := AppVersion
	if v == "" {
		v = "dev"
	}

	return "xapictl/" + v
}

// ExportBuildInfoMetric registers the build info gauge with the metrics registry.
func ExportBuildInfoMetric() {
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xapictl_build_info",
			Help: "A metric with a constant '1' value, labeled by branch, commit, summary, builddate, version, Go version from which xapictl was built.",
		},
		[]string{"branch", "commit", "summary", "builddate", "version", "goversion"},
	)

	if err := metrics.Registry.Register(buildInfo); err != nil {
		return
	}

	buildInfo.WithLabelValues(GitBranch, GitCommit, GitSummary, BuildDate, AppVersion, GoVersion).Set(1)
}
