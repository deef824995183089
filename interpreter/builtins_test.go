package interpreter

import (
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestConversionRoundTrip(t *testing.T) {
	src := `
func main() {
	print(str(int("42")) == "42");
	print(len(split("a,b,c", ",")));
	print(int('7') + 1);
	print(str(2.0), str(true), str('c'), str(12));
	print(type(str([1])));
	print(int(3.5));
}`
	if out := mustRun(t, src); out != "true\n3\n8\n2truec12\nNone\nNone\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestListBuiltins(t *testing.T) {
	src := `
func main() {
	let xs = range(3);
	insert(xs, 0, 9);
	insert(xs, 4, 7);
	print(xs);
	print(remove(xs, 1));
	print(pop(xs));
	set(xs, 0, "first");
	print(xs);
	print(contains(xs, 2), contains(xs, "first"), contains(xs, 100));
	let empty = [];
	print(pop(empty));
	print(len(xs), len("héllo"));
}`
	want := "[9, 0, 1, 2, 7]\n0\n7\n[first, 1, 2]\ntruetruefalse\nNone\n35\n"
	if out := mustRun(t, src); out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestPushStoresDeepCopy(t *testing.T) {
	src := `
func main() {
	let inner = [1];
	let outer = [];
	push(outer, inner);
	push(inner, 2);
	print(outer);
	print(inner);
}`
	if out := mustRun(t, src); out != "[[1]]\n[1, 2]\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSetOnString(t *testing.T) {
	src := `
func main() {
	let s = "cat";
	let alias = s;
	set(s, 0, 'b');
	print(alias);
}`
	if out := mustRun(t, src); out != "bat\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSetReplacesElementCell(t *testing.T) {
	src := `
func main() {
	let l = [1, 2];
	let e = l[0];
	set(l, 0, 9);
	print(e, " ", l);
}`
	if out := mustRun(t, src); out != "1 [9, 2]\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTypeBuiltin(t *testing.T) {
	src := `
func main() {
	print(type(1), " ", type(1.5), " ", type("s"), " ", type('c'), " ", type(None), " ", type([]), " ", type({}), " ", type(true));
	print(type(1) == type(2), type(1) == type("x"));
}`
	if out := mustRun(t, src); out != "Int Float String Char None List Hash Bool\ntruefalse\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBuiltinFaults(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
	}{
		{`func main() { insert([1], 3, 0); }`, ErrIndexOutOfRange},
		{`func main() { remove([], 0); }`, ErrIndexOutOfRange},
		{`func main() { set("ab", 0, "x"); }`, ErrIncorrectType},
		{`func main() { set(1, 0, 1); }`, ErrIncorrectType},
		{`func main() { split("a", 1); }`, ErrIncorrectType},
		{`func main() { range("3"); }`, ErrIncorrectType},
		{`func main() { copy(); }`, ErrIncorrectArgs},
		{`func main() { input("a", "b"); }`, ErrIncorrectArgs},
	}
	for _, tt := range tests {
		_, _, err := runScript(t, tt.src)
		expectKind(t, err, tt.kind)
	}
}

func TestInput(t *testing.T) {
	out, _, err := runScript(t, `func main() { let name = input("name? "); let next = input(); print("hi ", name, next); }`,
		WithStdin(strings.NewReader("ada\r\nbob")))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out != "name? hi adabob\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDebugPrintsCellAddress(t *testing.T) {
	out := mustRun(t, `func main() { let a = [1]; debug(a, "x"); }`)
	pattern := regexp.MustCompile(`^0x[0-9a-f]+: \[1\]\n0x[0-9a-f]+: x\n$`)
	if !pattern.MatchString(out) {
		t.Fatalf("unexpected debug output %q", out)
	}
}

func TestNetworkingDisabled(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.AllowNetwork = false
	_, _, err := runScript(t, `func main() { tcp_bind("127.0.0.1:0"); }`, WithRuntimeConfig(cfg))
	rerr := expectKind(t, err, ErrIOFailure)
	if !strings.Contains(rerr.Error(), "networking disabled") {
		t.Fatalf("unexpected message %v", rerr)
	}
}

func TestListenWithoutBind(t *testing.T) {
	_, _, err := runScript(t, `func main() { tcp_listen(); }`)
	expectKind(t, err, ErrIOFailure)
}

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot open a local listener: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestTCPEcho(t *testing.T) {
	addr := freeAddress(t)
	src := fmt.Sprintf(`
func main() {
	tcp_bind(%q);
	let request = tcp_listen();
	tcp_write("echo:" + request);
	tcp_unbind();
}`, addr)
	program, err := LoadSource("main.spl", src, nil)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	interp, err := NewInterpreter(program, WithStdout(io.Discard))
	if err != nil {
		t.Fatalf("interpreter error: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := interp.Run(context.Background())
		done <- err
	}()

	var conn net.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer conn.Close()
	if _, err := io.WriteString(conn, "hello\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(reply) != "echo:hello" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if err := <-done; err != nil {
		t.Fatalf("run error: %v", err)
	}
}
