package probe

import (
	"strings"
	"time"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

type Options struct {
	Timeout      time.Duration
	InsecureTLS  bool
	DNSDiagnosis bool
}

// ForEndpoint picks the checker for an endpoint: HTTP(S) for URLs, TCP
// connect for bare host:port addresses. The result is always panic-safe.
func ForEndpoint(ep domain.Endpoint, opts Options) Checker {
	var c Checker
	if strings.Contains(ep.Target, "://") {
		c = NewHTTPChecker(opts.Timeout, opts.InsecureTLS)
	} else {
		c = NewTCPChecker(opts.Timeout)
	}
	if opts.DNSDiagnosis {
		c = NewDNSDiagnoser(c)
	}
	return Safe{Inner: c}
}
