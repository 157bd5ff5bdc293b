package power

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	powerCfgRe = regexp.MustCompile(`(?P<GUID>[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[8|9|aA|bB][a-fA-F0-9]{3}-[a-fA-F0-9]{12})  (?P<Name>\((.*?)\))\s?(?P<Active>\*)?`)
)

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, command string, args ...string) ([]byte, error)

type plan struct {
	GUID           string
	Name           string
	normalizedName string
}

// Cfg allows the caller to change the Power Plan Option in Windows
type Cfg struct {
	mu         sync.Mutex
	run        Runner
	plansMap   map[string]plan
	activePlan plan
	logger     zerolog.Logger
}

// NewCfg will return a Cfg allowing you to modify the Windows Power Option
func NewCfg(ctx context.Context, run Runner, logger zerolog.Logger) (*Cfg, error) {
	if run == nil {
		return nil, errors.New("nil Runner is invalid")
	}
	cfg := &Cfg{
		run:      run,
		plansMap: make(map[string]plan),
		logger:   logger,
	}
	if err := cfg.loadPowerPlans(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (p *Cfg) loadPowerPlans(ctx context.Context) error {
	powerCfgOut, err := p.run(ctx, "powercfg", "/l")
	if err != nil {
		p.logger.Error().Err(err).Msg("cannot list power plans")
		return errors.Wrap(err, "power: cannot list power plans")
	}
	lines := strings.Split(string(powerCfgOut), "\n")
	for _, line := range lines {
		match := powerCfgRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		currentPlan := plan{
			GUID:           match[1],
			Name:           match[3],
			normalizedName: strings.ToLower(match[3]),
		}
		p.plansMap[currentPlan.normalizedName] = currentPlan
		if match[4] == "*" {
			p.activePlan = currentPlan
		}
	}
	if len(p.plansMap) == 0 {
		return errors.New("power: no power plan found")
	}
	return nil
}

// Plans returns the names of the available power plans
func (p *Cfg) Plans() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.plansMap))
	for _, pl := range p.plansMap {
		names = append(names, pl.Name)
	}
	return names
}

// Active returns the name of the active power plan
func (p *Cfg) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.activePlan.Name
}

// Set will change the Windows Power Option to the given power plan name
func (p *Cfg) Set(ctx context.Context, planName string) (nextPlan string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	propose, ok := p.plansMap[strings.ToLower(planName)]
	if !ok {
		return "", errors.Errorf("power: cannot find power plan %q", planName)
	}

	if p.activePlan.GUID == propose.GUID {
		// don't apply unnecessary changes
		return p.activePlan.Name, nil
	}

	if _, err := p.run(ctx, "powercfg", "/S", propose.GUID); err != nil {
		p.logger.Error().Err(err).Msg("cannot set active power plan")
		return "", errors.Wrap(err, "power: cannot set power plan")
	}
	p.activePlan = propose

	p.logger.Info().Str("plan", propose.Name).Msg("windows power plan set")

	return propose.Name, nil
}

// PlanApplier maps power modes onto Windows power plans
type PlanApplier struct {
	Cfg *Cfg
	// Plans returns the configured plan name of each mode
	Plans func() map[powermode.Mode]string
}

var _ powermode.Applier = &PlanApplier{}

// Apply switches to the plan configured for mode. A mode without a plan is
// left alone.
func (a *PlanApplier) Apply(ctx context.Context, mode powermode.Mode) error {
	name, ok := a.Plans()[mode]
	if !ok || name == "" {
		return nil
	}
	_, err := a.Cfg.Set(ctx, name)
	return err
}
