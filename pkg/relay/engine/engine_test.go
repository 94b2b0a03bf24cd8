package engine

import "testing"

func TestIPv4AddressString(t *testing.T) {
	addr := IPv4Address{A: 127, B: 0, C: 0, D: 1, Port: 8080}
	if got, want := addr.String(), "127.0.0.1:8080"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIPv4ToSockaddrByteOrder(t *testing.T) {
	addr := IPv4Address{A: 10, B: 20, C: 30, D: 40, Port: 9000}
	sa := ipv4ToSockaddr(addr)
	want := [4]byte{10, 20, 30, 40}
	if sa.Addr != want {
		t.Errorf("sockaddr Addr = %v, want %v (each octet in its own byte position)", sa.Addr, want)
	}
	if sa.Port != 9000 {
		t.Errorf("sockaddr Port = %d, want 9000", sa.Port)
	}
}

func TestNewBindsEphemeralPort(t *testing.T) {
	s, err := New(Config{ListenAddr: IPv4Address{A: 127, B: 0, C: 0, D: 1, Port: 0}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.ListenAddr().Port == 0 {
		t.Errorf("ListenAddr().Port = 0, want a resolved ephemeral port")
	}
}

func TestFindFreeSlot(t *testing.T) {
	s, err := New(Config{ListenAddr: IPv4Address{A: 127, B: 0, C: 0, D: 1, Port: 0}, ConnectionsMax: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	slot := s.findFreeSlot()
	if slot == nil {
		t.Fatalf("findFreeSlot() = nil on empty table")
	}
	slot.Open = true

	slot2 := s.findFreeSlot()
	if slot2 == nil || slot2 == slot {
		t.Fatalf("findFreeSlot() did not return the second distinct slot")
	}
	slot2.Open = true

	if got := s.findFreeSlot(); got != nil {
		t.Errorf("findFreeSlot() on a full table = %v, want nil", got)
	}
}
