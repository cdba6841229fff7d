package probe

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
)

var dnsTimeout = 3 * time.Second

// DNSDiagnoser annotates failed results from Inner with the DNS class of the
// target host ("... dns=NXDOMAIN"). Successful results pass through untouched.
// Probe and lookup share the caller's deadline.
type DNSDiagnoser struct {
	Inner    Checker
	Resolver Resolver
}

func NewDNSDiagnoser(inner Checker) *DNSDiagnoser {
	return &DNSDiagnoser{Inner: inner, Resolver: &net.Resolver{}}
}

func (d *DNSDiagnoser) Check(ctx context.Context, target string) CheckResult {
	pctx, cancel := withDNSReserve(ctx)
	out := d.Inner.Check(pctx, target)
	cancel()
	if out.Success || ctx.Err() != nil {
		return out
	}

	dctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	dns := CheckDNS(dctx, d.Resolver, extractHost(target))
	out.Message = strings.TrimSpace(out.Message + " dns=" + dns.Class)
	return out
}

// withDNSReserve ends the inner probe early enough that the lookup still
// fits inside ctx's deadline: a quarter of the budget, at most dnsTimeout.
func withDNSReserve(ctx context.Context) (context.Context, context.CancelFunc) {
	dl, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	reserve := min(dnsTimeout, time.Until(dl)/4)
	return context.WithDeadline(ctx, dl.Add(-reserve))
}

func extractHost(raw string) string {
	if !strings.Contains(raw, "://") {
		if host, _, err := net.SplitHostPort(raw); err == nil {
			return host
		}
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
