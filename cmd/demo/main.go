// cmd/demo/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/config"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/storage"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// console serialises output from the prompt loop and the session events.
// step is the card shown by the last state event.
type console struct {
	mu   sync.Mutex
	step models.Step
}

func (c *console) setStep(step models.Step) {
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()
}

func (c *console) currentStep() models.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Printf(format, args...)
}

func (c *console) box(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	printBox(title, body)
}

func main() {
	scenarioID := flag.String("scenario", "", "scenario id (default: crisis-touchpoint)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := utils.InitLogger(utils.LoggerConfig{Level: "warn", Encoding: "console", File: logFile(cfg)}); err != nil {
		log.Printf("logger: %v", err)
	}

	library, err := openLibrary(cfg)
	if err != nil {
		log.Fatalf("load scenarios: %v", err)
	}
	graph, err := library.Get(*scenarioID)
	if err != nil {
		log.Fatalf("%v", err)
	}

	out := &console{}
	session, err := simulation.NewSession("console", graph, simulation.Options{
		DecisionSeconds:        cfg.DecisionSeconds,
		PacingThresholdSeconds: cfg.PacingThresholdSeconds,
		Audio: audio.Multi{
			audio.Logging{},
			audio.Func(func(kind models.SoundKind) { out.printf("  ♪ %s\n", kind) }),
		},
		Listener: simulation.ListenerFunc(func(e simulation.Event) { onEvent(out, e) }),
	})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	defer session.Close()

	out.box(graph.Title, graph.Intro+"\n\n"+graph.Setting)
	printHelp(out)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		out.printf("> ")
		if !scanner.Scan() {
			return
		}
		if !handleInput(out, session, strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

func openLibrary(cfg *config.Config) (*content.Library, error) {
	if cfg.ScenarioDir == "" {
		return content.NewLibrary(nil)
	}
	store, err := storage.NewScenarioStore(cfg.ScenarioDir)
	if err != nil {
		return nil, err
	}
	return content.NewLibrary(store)
}

func logFile(cfg *config.Config) string {
	if cfg.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.LogDir, "console.log")
}

func printHelp(out *console) {
	out.box("Comandos", strings.Join([]string{
		"start            comenzar la simulación",
		"n / b            siguiente / anterior",
		"1..9             elegir una opción de transición",
		"set campo valor  responder (immediateAction, teamComm, clientAction, additionalNotes)",
		"options          ver opciones de la decisión",
		"submit           enviar decisiones",
		"restart          volver a la introducción",
		"sound            activar o silenciar sonido",
		"status           estado actual",
		"quit             salir",
	}, "\n"))
}

// handleInput runs one console command and returns false to exit
func handleInput(out *console, session *simulation.Session, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	report := func(changed bool) {
		if !changed {
			out.printf("  (sin cambios en la fase %s)\n", session.Phase())
		}
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "start":
		report(session.Start())
	case "n", "next":
		report(session.Advance())
	case "b", "back":
		report(session.Retreat())
	case "set":
		if len(fields) < 3 {
			out.printf("  uso: set campo valor\n")
			return true
		}
		changed, err := session.SetDecisionField(models.DecisionField(fields[1]), strings.Join(fields[2:], " "))
		if err != nil {
			out.printf("  error: %v\n", err)
			return true
		}
		report(changed)
		printDecisions(out, session.Snapshot())
	case "options":
		printOptions(out)
	case "submit":
		if !session.Submit() {
			out.printf("  faltan respuestas o no es momento de enviar\n")
		}
	case "restart":
		report(session.Restart())
	case "sound":
		if session.ToggleSound() {
			out.printf("  sonido activado\n")
		} else {
			out.printf("  sonido silenciado\n")
		}
	case "status":
		printSnapshot(out, session.Snapshot())
	case "help", "h", "?":
		printHelp(out)
	case "quit", "exit", "q":
		return false
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			out.printf("  comando desconocido: %s\n", cmd)
			return true
		}
		selectOption(out, session, n)
	}
	return true
}

func selectOption(out *console, session *simulation.Session, n int) {
	step := session.Snapshot().Step
	transition, ok := step.Content.(models.TransitionContent)
	if !ok || n < 1 || n > len(transition.Options) {
		out.printf("  no hay opción %d en este paso\n", n)
		return
	}
	changed, err := session.SelectBranch(transition.Options[n-1].ID)
	if err != nil {
		out.printf("  error: %v\n", err)
		return
	}
	if !changed {
		out.printf("  (sin cambios)\n")
	}
}

func onEvent(out *console, e simulation.Event) {
	switch e.Type {
	case simulation.EventState:
		out.setStep(e.Snapshot.Step)
		printSnapshot(out, *e.Snapshot)
	case simulation.EventReveal:
		if line := describeReveal(out.currentStep(), *e.Reveal); line != "" {
			out.printf("  %s\n", line)
		}
	case simulation.EventTick:
		if e.Tick.Remaining%30 == 0 || e.Tick.Remaining <= 10 {
			out.printf("  ⏱ %s\n", e.Tick.Display)
		}
	}
}
