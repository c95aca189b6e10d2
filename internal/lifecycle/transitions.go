package lifecycle

import (
	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

type machine struct {
	label    string
	terminal map[string]struct{}
	edges    map[string]map[string]struct{}
}

var sowMachine = machine{
	label:    "sow",
	terminal: toSet(string(models.SowCulled), string(models.SowSold)),
	edges: map[string]map[string]struct{}{
		string(models.SowActive):    toSet(string(models.SowPregnant), string(models.SowCulled), string(models.SowSold)),
		string(models.SowPregnant):  toSet(string(models.SowLactating), string(models.SowActive), string(models.SowCulled), string(models.SowSold)),
		string(models.SowLactating): toSet(string(models.SowWeaned), string(models.SowCulled), string(models.SowSold)),
		string(models.SowWeaned):    toSet(string(models.SowActive), string(models.SowPregnant), string(models.SowCulled), string(models.SowSold)),
	},
}

var boarMachine = machine{
	label:    "boar",
	terminal: toSet(string(models.BoarCulled), string(models.BoarSold)),
	edges: map[string]map[string]struct{}{
		string(models.BoarActive):  toSet(string(models.BoarResting), string(models.BoarCulled), string(models.BoarSold)),
		string(models.BoarResting): toSet(string(models.BoarActive), string(models.BoarCulled), string(models.BoarSold)),
	},
}

// A piglet can die at any stage; it is only sold once READY.
var pigletMachine = machine{
	label:    "piglet",
	terminal: toSet(string(models.PigletSold), string(models.PigletDead)),
	edges: map[string]map[string]struct{}{
		string(models.PigletNursing): toSet(string(models.PigletWeaned), string(models.PigletDead)),
		string(models.PigletWeaned):  toSet(string(models.PigletGrowing), string(models.PigletDead)),
		string(models.PigletGrowing): toSet(string(models.PigletReady), string(models.PigletDead)),
		string(models.PigletReady):   toSet(string(models.PigletSold), string(models.PigletDead)),
	},
}

func (m machine) allows(from, to string) bool {
	if from == to {
		return true
	}
	if _, done := m.terminal[from]; done {
		return false
	}
	_, ok := m.edges[from][to]
	return ok
}

func (m machine) check(from, to string) error {
	if m.allows(from, to) {
		return nil
	}
	if _, done := m.terminal[from]; done {
		return apperror.State("cannot move %s from terminal status %s to %s", m.label, from, to)
	}
	return apperror.State("illegal %s status transition %s -> %s", m.label, from, to)
}

// CheckSowTransition rejects a sow status change that the reproductive cycle does not allow.
func CheckSowTransition(from, to models.SowStatus) error {
	return sowMachine.check(string(from), string(to))
}

// CheckBoarTransition rejects an illegal boar status change.
func CheckBoarTransition(from, to models.BoarStatus) error {
	return boarMachine.check(string(from), string(to))
}

// CheckPigletTransition rejects an illegal piglet status change.
func CheckPigletTransition(from, to models.PigletStatus) error {
	return pigletMachine.check(string(from), string(to))
}

// CanSowTransition reports whether a sow may move between the two statuses.
func CanSowTransition(from, to models.SowStatus) bool {
	return sowMachine.allows(string(from), string(to))
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
