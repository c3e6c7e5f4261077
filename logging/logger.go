package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

var levelNames = map[Level]string{
	FATAL:   "fatal",
	ERROR:   "error",
	WARNING: "warn",
	INFO:    "info",
	DEBUG:   "debug",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel returns the Level for names like "debug" or "warn".
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return WARNING, nil
	}
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level: '%s'", name)
}

type Record struct {
	Level     Level
	Component string
	Message   string
}

func Debugf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{DEBUG, "", fmt.Sprintf(msg, args...)}
}

func Infof(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, "", fmt.Sprintf(msg, args...)}
}

func Warnf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, "", fmt.Sprintf(msg, args...)}
}

func Errorf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{ERROR, "", fmt.Sprintf(msg, args...)}
}

// SetLevel drops all records above lvl. INFO by default.
func SetLevel(lvl Level) {
	defaultLogBroker.setLevel(lvl)
}

// SetOutput redirects all records to w. Stderr by default.
func SetOutput(w io.Writer) {
	defaultLogBroker.setOutput(w)
}

type Logger struct {
	Component string
}

func (l *Logger) Print(args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{INFO, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	if !defaultLogBroker.enabled(DEBUG) {
		return
	}
	defaultLogBroker.Records <- Record{DEBUG, l.Component, fmt.Sprintf(msg, args...)}
}

// Fatal logs the message, flushes all pending records and exits with
// status 1.
func (l *Logger) Fatal(args ...interface{}) {
	defaultLogBroker.Records <- Record{FATAL, l.Component, fmt.Sprint(args...)}
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{FATAL, l.Component, fmt.Sprintf(msg, args...)}
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{ERROR, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Warn(args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{WARNING, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Printfl(level Level, msg string, args ...interface{}) {
	defaultLogBroker.Records <- Record{level, l.Component, fmt.Sprintf(msg, args...)}
}

// StartStep logs the start of a longer running operation. Pass the
// returned name to StopStep to log its duration.
func (l *Logger) StartStep(msg string) string {
	defaultLogBroker.StepStart <- Step{l.Component, msg}
	return msg
}

func (l *Logger) StopStep(msg string) {
	defaultLogBroker.StepStop <- Step{l.Component, msg}
}

func NewLogger(component string) *Logger {
	return &Logger{component}
}

type Step struct {
	Component string
	Name      string
}

type LogBroker struct {
	Records   chan Record
	StepStart chan Step
	StepStop  chan Step
	sync      chan chan struct{}
	quit      chan bool
	wg        *sync.WaitGroup

	mu    sync.RWMutex
	level Level
	out   io.Writer
}

func (l *LogBroker) setLevel(lvl Level) {
	l.mu.Lock()
	l.level = lvl
	l.mu.Unlock()
}

func (l *LogBroker) setOutput(w io.Writer) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

func (l *LogBroker) enabled(lvl Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lvl <= l.level
}

func (l *LogBroker) loop() {
	steps := make(map[Step]time.Time)
For:
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		case step := <-l.StepStart:
			steps[step] = time.Now()
			l.printRecord(Record{DEBUG, step.Component, step.Name + " started"})
		case step := <-l.StepStop:
			startTime := steps[step]
			delete(steps, step)
			duration := time.Since(startTime)
			l.printRecord(Record{INFO, step.Component, step.Name + " took: " + duration.String()})
		case done := <-l.sync:
			l.flush()
			close(done)
		case <-l.quit:
			break For
		}
	}
	// after quit, print all records from chan
	l.flush()
	l.wg.Done()
}

func (l *LogBroker) flush() {
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		default:
			return
		}
	}
}

func (l *LogBroker) printRecord(record Record) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if record.Level > l.level {
		return
	}
	prefix := "[" + time.Now().Format(time.Stamp) + "] "
	if record.Level != INFO {
		prefix += "[" + record.Level.String() + "] "
	}
	if record.Component != "" {
		prefix += "[" + record.Component + "] "
	}
	fmt.Fprintln(l.out, prefix+record.Message)
}

// Sync blocks till all pending records are written.
func Sync() {
	done := make(chan struct{})
	defaultLogBroker.sync <- done
	<-done
}

func Shutdown() {
	defaultLogBroker.quit <- true
	defaultLogBroker.wg.Wait()
}

var defaultLogBroker *LogBroker

func init() {
	defaultLogBroker = &LogBroker{
		Records:   make(chan Record, 8),
		StepStart: make(chan Step),
		StepStop:  make(chan Step),
		sync:      make(chan chan struct{}),
		quit:      make(chan bool),
		wg:        &sync.WaitGroup{},
		level:     INFO,
		out:       os.Stderr,
	}
	defaultLogBroker.wg.Add(1)
	go defaultLogBroker.loop()
}
