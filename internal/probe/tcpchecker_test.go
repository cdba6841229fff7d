package probe

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPChecker_OpenAndClosedPorts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	addr := ln.Addr().String()

	chk := NewTCPChecker(time.Second)
	if out := chk.Check(context.Background(), addr); !out.Success || out.Name != "TCP" {
		t.Fatalf("want open port up, got %+v", out)
	}

	ln.Close()
	if out := chk.Check(context.Background(), addr); out.Success {
		t.Fatalf("want closed port down, got %+v", out)
	}
}
