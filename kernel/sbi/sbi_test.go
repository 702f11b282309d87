//go:build !riscv64

package sbi

import "testing"

func TestPutCharEcallsConsoleExtension(t *testing.T) {
	PutChar('A')

	if lastEcall.eid != extConsolePutChar {
		t.Fatalf("PutChar eid = %d, want %d", lastEcall.eid, extConsolePutChar)
	}
	if lastEcall.arg0 != uint64('A') {
		t.Fatalf("PutChar arg0 = %d, want %d", lastEcall.arg0, uint64('A'))
	}
}

func TestShutdownEcallsShutdownExtension(t *testing.T) {
	before := shutdownCalls
	Shutdown()

	if lastEcall.eid != extShutdown {
		t.Fatalf("Shutdown eid = %d, want %d", lastEcall.eid, extShutdown)
	}
	if shutdownCalls != before+1 {
		t.Fatalf("shutdownCalls = %d, want %d", shutdownCalls, before+1)
	}
}

func TestConsoleWriteEmitsEveryByte(t *testing.T) {
	var c Console
	n, err := c.Write([]byte("hi"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 2 {
		t.Fatalf("Write returned n = %d, want 2", n)
	}
	if lastEcall.arg0 != uint64('i') {
		t.Fatalf("last PutChar arg0 = %d, want %d ('i')", lastEcall.arg0, uint64('i'))
	}
}
