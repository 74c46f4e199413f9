// Command verid exposes the dispatch core over a line-delimited JSON
// protocol for editor integrations. Every request gets a dispatch result,
// and each diagnostic on the result's main component is appended as one
// row to an on-disk SQLite audit log, serialized through
// a single writer goroutine so concurrent per-connection dispatches
// never interleave writes — generalizing the "diagnostic emission is
// serialized" single-dispatch guarantee to a multi-connection server.
package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/veridian-lang/veri/internal/config"
	"github.com/veridian-lang/veri/internal/diag"
	"github.com/veridian-lang/veri/internal/dispatch"
)

// auditRow is one persisted diagnostic: its dispatch request id, the
// method name that was resolved, the diagnostic's code, and its
// rendered message.
type auditRow struct {
	RequestID uuid.UUID
	Call      string
	Code      diag.Code
	Message   string
}

// auditLog owns the single writer goroutine over a buffered channel.
type auditLog struct {
	rows chan auditRow
	done chan struct{}
}

func newAuditLog(db *sql.DB) *auditLog {
	a := &auditLog{rows: make(chan auditRow, 256), done: make(chan struct{})}
	go a.run(db)
	return a
}

func (a *auditLog) run(db *sql.DB) {
	defer close(a.done)
	stmt, err := db.Prepare(`insert into diagnostics(request_id, call, code, message) values (?, ?, ?, ?)`)
	if err != nil {
		log.Printf("verid: audit log disabled: %v", err)
		for range a.rows {
		}
		return
	}
	defer stmt.Close()
	for row := range a.rows {
		if _, err := stmt.Exec(row.RequestID.String(), row.Call, string(row.Code), row.Message); err != nil {
			log.Printf("verid: audit write failed: %v", err)
		}
	}
}

func (a *auditLog) record(row auditRow) { a.rows <- row }
func (a *auditLog) close()              { close(a.rows); <-a.done }

func openAuditDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`create table if not exists diagnostics (
		id integer primary key autoincrement,
		request_id text not null,
		call text not null,
		code text not null,
		message text not null
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// request/response are the line-delimited JSON protocol's wire shapes —
// each line on the connection is one request, one response.
type request struct {
	Snapshot snapshotWire  `json:"snapshot"`
	Receiver typeWire      `json:"receiver"`
	Call     string        `json:"call"`
	Args     []argWire     `json:"args"`
}

type response struct {
	RequestID   string   `json:"request_id"`
	ReturnType  string   `json:"return_type"`
	Diagnostics []string `json:"diagnostics"`
	Error       string   `json:"error,omitempty"`
}

func main() {
	socketPath := "verid.sock"
	if len(os.Args) > 1 {
		socketPath = os.Args[1]
	}
	dbPath := "verid_audit.db"
	if len(os.Args) > 2 {
		dbPath = os.Args[2]
	}

	db, err := openAuditDB(dbPath)
	if err != nil {
		log.Fatalf("verid: opening audit db: %v", err)
	}
	defer db.Close()
	audit := newAuditLog(db)
	defer audit.close()

	os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		log.Fatalf("verid: listening on %s: %v", socketPath, err)
	}
	defer ln.Close()
	log.Printf("verid: listening on %s, audit log %s", socketPath, dbPath)

	policy := config.DefaultPolicy()
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("verid: accept: %v", err)
			continue
		}
		go handleConn(conn, policy, audit)
	}
}

func handleConn(conn net.Conn, policy config.Policy, audit *auditLog) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		resp := handleRequest(scanner.Bytes(), policy, audit)
		line, err := json.Marshal(resp)
		if err != nil {
			continue
		}
		fmt.Fprintf(conn, "%s\n", line)
	}
}

func handleRequest(line []byte, policy config.Policy, audit *auditLog) response {
	requestID := uuid.New()
	resp := response{RequestID: requestID.String()}

	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		resp.Error = fmt.Sprintf("malformed request: %v", err)
		return resp
	}

	snap, err := req.Snapshot.build()
	if err != nil {
		resp.Error = fmt.Sprintf("snapshot: %v", err)
		return resp
	}
	receiver, err := req.Receiver.toType()
	if err != nil {
		resp.Error = fmt.Sprintf("receiver: %v", err)
		return resp
	}
	args, err := req.buildArgs(requestID)
	if err != nil {
		resp.Error = fmt.Sprintf("args: %v", err)
		return resp
	}

	d := dispatch.New(snap, policy)
	result := d.Dispatch(receiver, args)

	resp.ReturnType = safeString(result.ReturnType)
	for _, item := range result.Main.Errors.Items() {
		resp.Diagnostics = append(resp.Diagnostics, item.Error())
		audit.record(auditRow{RequestID: requestID, Call: req.Call, Code: item.Code, Message: item.Error()})
	}
	return resp
}

func safeString(t interface{ String() string }) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
