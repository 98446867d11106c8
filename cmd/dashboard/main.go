package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/nats-io/nats.go"

	"github.com/ivanzxc/go-vitals-stream/internal/analysis"
	"github.com/ivanzxc/go-vitals-stream/internal/record"
	"github.com/ivanzxc/go-vitals-stream/internal/stream"
)

// state is the latest view of the exported events.
type state struct {
	mu      sync.Mutex
	voltage []float64
	last    float64
	rate    *int
	fields  record.Fields
	status  string
	lines   []string
}

const maxLines = 200

func (s *state) apply(msg stream.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case "voltage":
		if msg.Voltage == nil {
			return
		}
		if msg.Index != nil && *msg.Index == 0 {
			s.voltage = s.voltage[:0]
		}
		if len(s.voltage) >= analysis.HistorySize {
			s.voltage = s.voltage[1:]
		}
		s.voltage = append(s.voltage, *msg.Voltage)
		s.last = *msg.Voltage
	case "rate":
		s.rate = msg.Rate
	case "fields":
		s.fields = msg.Fields
	case "status":
		s.status = msg.State
		if msg.Addr != "" {
			s.status += " " + msg.Addr
		}
	case "log":
		s.addLine(msg.Line)
	case "error":
		s.addLine("error: " + msg.Error)
	}
}

func (s *state) addLine(line string) {
	if len(s.lines) >= maxLines {
		s.lines = s.lines[1:]
	}
	s.lines = append(s.lines, line)
}

func field(f record.Fields, key string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return "--"
}

func main() {

	var (
		natsURL = flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
		prefix  = flag.String("prefix", "vitals", "subject prefix")
	)
	flag.Parse()

	nc, err := stream.Connect(*natsURL)
	if err != nil {
		log.Fatal(err)
	}
	defer nc.Drain()

	st := &state{status: "waiting for events"}

	_, err = nc.Subscribe(*prefix+".>", func(m *nats.Msg) {
		var msg stream.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			return
		}
		st.apply(msg)
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to init termui: %v", err)
	}
	defer ui.Close()

	summary := widgets.NewTable()
	summary.Title = " Vitals "
	summary.TextStyle = ui.NewStyle(ui.ColorWhite)
	summary.RowSeparator = false
	summary.BorderStyle.Fg = ui.ColorGreen

	logs := widgets.NewList()
	logs.Title = " Received "
	logs.BorderStyle.Fg = ui.ColorYellow

	sl := widgets.NewSparkline()
	sl.LineColor = ui.ColorRed
	sg := widgets.NewSparklineGroup(sl)
	sg.Title = " CH1 "
	sg.BorderStyle.Fg = ui.ColorRed

	grid := ui.NewGrid()
	termWidth, termHeight := ui.TerminalDimensions()
	grid.SetRect(0, 0, termWidth, termHeight)
	grid.Set(
		ui.NewRow(0.6,
			ui.NewCol(0.35, summary),
			ui.NewCol(0.65, logs),
		),
		ui.NewRow(0.4,
			ui.NewCol(1.0, sg),
		),
	)

	uiEvents := ui.PollEvents()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case e := <-uiEvents:
			if e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>") {
				return
			}
			if e.Type == ui.ResizeEvent {
				payload := e.Payload.(ui.Resize)
				grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				ui.Render(grid)
			}
		case <-ticker.C:
			render(st, summary, logs, sl, sg)
			ui.Render(grid)
		}
	}
}

func render(st *state, summary *widgets.Table, logs *widgets.List, sl *widgets.Sparkline, sg *widgets.SparklineGroup) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rate := "--"
	if st.rate != nil {
		rate = fmt.Sprint(*st.rate)
	}

	summary.Rows = [][]string{
		{"Status", st.status},
		{"CH1", fmt.Sprintf("%.2f V", st.last)},
		{"Breathing", rate + " /min"},
		{"Heart rate", field(st.fields, record.KeyHeartRate) + " bpm"},
		{"SpO2", field(st.fields, record.KeySpO2) + " %"},
		{"Blood pressure", field(st.fields, record.KeySystolicBP) + " / " + field(st.fields, record.KeyDiastolicBP) + " mmHg"},
		{"Fatigue", field(st.fields, record.KeyFatigue)},
		{"Microcirculation", field(st.fields, record.KeyMicro)},
	}

	var extra []string
	for k := range st.fields {
		switch k {
		case record.KeyHeartRate, record.KeySpO2, record.KeySystolicBP,
			record.KeyDiastolicBP, record.KeyFatigue, record.KeyMicro:
		default:
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		summary.Rows = append(summary.Rows, []string{k, st.fields[k]})
	}

	logs.Rows = append(logs.Rows[:0], st.lines...)
	logs.ScrollBottom()

	sl.Data = append(sl.Data[:0], st.voltage...)
	sl.MaxVal = 0
	for _, v := range st.voltage {
		if v > sl.MaxVal {
			sl.MaxVal = v
		}
	}
}
