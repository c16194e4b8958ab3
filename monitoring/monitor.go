// Package monitoring serves the progress and the internal state of running
// translators over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/memsim/mem/storage"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/addresstranslator"
	"github.com/sarchlab/memsim/mem/vm/tlb"
	"github.com/sarchlab/memsim/monitoring/web"
	"github.com/sarchlab/memsim/sim"
)

// A TranslatorState is a copy of a translator taken after a translation.
type TranslatorState struct {
	Name        string                       `json:"name"`
	Stats       addresstranslator.Statistics `json:"stats"`
	LastResult  *addresstranslator.Result    `json:"last_result,omitempty"`
	TLB         []tlb.Entry                  `json:"tlb"`
	PageTable   []vm.PageTableEntry          `json:"page_table"`
	Frames      []storage.Frame              `json:"frames"`
	NumFrames   int                          `json:"num_frames"`
	TLBCapacity int                          `json:"tlb_capacity"`
}

type statsRsp struct {
	Name          string  `json:"name"`
	NumAddresses  uint64  `json:"num_addresses"`
	PageFaults    uint64  `json:"page_faults"`
	PageFaultRate float64 `json:"page_fault_rate"`
	TLBHits       uint64  `json:"tlb_hits"`
	TLBMisses     uint64  `json:"tlb_misses"`
	TLBHitRate    float64 `json:"tlb_hit_rate"`
}

// Monitor can turn a translation run into a server and allows external
// monitoring of the translators. A Monitor is a hook. It only reads the
// translators from inside the hook, so the HTTP handlers never race with the
// translation.
type Monitor struct {
	portNumber int

	stateLock sync.Mutex
	names     []string
	states    map[string]*TranslatorState

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	runBars          map[string]*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		states:  make(map[string]*TranslatorState),
		runBars: make(map[string]*ProgressBar),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterTranslator makes the monitor follow a translator.
func (m *Monitor) RegisterTranslator(c *addresstranslator.Comp) {
	c.AcceptHook(m)

	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	if _, ok := m.states[c.Name()]; !ok {
		m.names = append(m.names, c.Name())
	}

	m.states[c.Name()] = takeState(c)
}

// Func updates the copy of the translator that triggered the hook.
func (m *Monitor) Func(ctx sim.HookCtx) {
	c, ok := ctx.Domain.(*addresstranslator.Comp)
	if !ok {
		return
	}

	switch ctx.Pos {
	case addresstranslator.HookPosRunStart:
		total, _ := ctx.Item.(int)
		m.startRun(c.Name(), uint64(total))
	case addresstranslator.HookPosAfterTranslation:
		state := takeState(c)
		if result, ok := ctx.Item.(addresstranslator.Result); ok {
			result.Frame = nil
			state.LastResult = &result
		}

		m.setState(state)
		m.advanceRun(c.Name())
	case addresstranslator.HookPosRunEnd:
		m.setState(takeState(c))
		m.endRun(c.Name())
	}
}

func takeState(c *addresstranslator.Comp) *TranslatorState {
	fs := c.FrameStore()

	frames := make([]storage.Frame, fs.NumOccupied())
	for i := range frames {
		page, _ := fs.Resident(i)
		frames[i] = storage.Frame{FrameNumber: i, PageNumber: page}
	}

	return &TranslatorState{
		Name:        c.Name(),
		Stats:       c.Stats(),
		TLB:         c.TLB().Entries(),
		PageTable:   c.PageTable().ValidEntries(),
		Frames:      frames,
		NumFrames:   fs.NumFrames(),
		TLBCapacity: c.TLB().Capacity(),
	}
}

func (m *Monitor) setState(state *TranslatorState) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	if _, ok := m.states[state.Name]; !ok {
		m.names = append(m.names, state.Name)
	}

	m.states[state.Name] = state
}

// State returns the latest copy of a translator.
func (m *Monitor) State(name string) (*TranslatorState, bool) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	state, ok := m.states[name]

	return state, ok
}

func (m *Monitor) startRun(name string, total uint64) {
	bar := m.CreateProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.runBars[name] = bar
}

func (m *Monitor) advanceRun(name string) {
	m.progressBarsLock.Lock()
	bar := m.runBars[name]
	m.progressBarsLock.Unlock()

	if bar != nil {
		bar.IncrementFinished(1)
	}
}

func (m *Monitor) endRun(name string) {
	m.progressBarsLock.Lock()
	bar := m.runBars[name]
	delete(m.runBars, name)
	m.progressBarsLock.Unlock()

	if bar != nil {
		m.CompleteProgressBar(bar)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router that serves the monitoring API and pages.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/stats/{name}", m.stats)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring translation with %s\n", url)

	handler := m.Handler()
	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.Lock()
	names := make([]string, len(m.names))
	copy(names, m.names)
	m.stateLock.Unlock()

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	state := m.findStateOr404(w, mux.Vars(r)["name"])
	if state == nil {
		return
	}

	rsp := statsRsp{
		Name:         state.Name,
		NumAddresses: state.Stats.NumAddresses,
		PageFaults:   state.Stats.PageFaults,
		TLBHits:      state.Stats.TLBHits,
		TLBMisses:    state.Stats.TLBMisses,
	}
	rsp.PageFaultRate, _ = state.Stats.PageFaultRate()
	rsp.TLBHitRate, _ = state.Stats.TLBHitRate()

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	state := m.findStateOr404(w, mux.Vars(r)["name"])
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	state := m.findStateOr404(w, req.CompName)
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findStateOr404(
	w http.ResponseWriter,
	name string,
) *TranslatorState {
	state, ok := m.State(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)

		return nil
	}

	return state
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(bars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
