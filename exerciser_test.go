package okvt

import (
	"fmt"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
)

var testThingy *testing.T

// The exerciser drives a tree through random interleavings of writes,
// quiet writes, checkpoints, navigation and flag resets, against a
// model that tracks values, per-path versions, update flags, the open
// diff interval and the committed history.
type expected struct {
	seed     map[uint]uint
	values   map[string]tv
	pBefore  map[string]tv
	pAfter   map[string]tv
	created  map[string]bool
	versions map[string]int64
	touched  map[string]bool
	writes   int64
	points   []point
	resume   int // committed history index, -1 when at the tip
}

// point is one committed checkpoint in the model: the interval diff and
// the write count at commit time, which doubles as the version id.
type point struct {
	before map[string]tv
	after  map[string]tv
	writes int64
}

type system struct {
	tree     *Tree
	versions []int64
	cmdCount int
}

const uimax = 99_999

var exerciserPaths = []string{
	"scene",
	"scene.objects",
	"scene.objects.first",
	"scene.objects.second",
	"scene.camera",
	"editor.state",
	"editor.tool.size",
}

var (
	cmdCount   = 0
	maxHistory = 0
	debug      = false
)

func progress(i interface{}) {
	if debug {
		fmt.Printf("%v\n", i)
	}
}

func pathFor(n uint) string {
	return exerciserPaths[n%uint(len(exerciserPaths))]
}

func valFor(n uint) tv {
	return num(int(n % 17))
}

func modelValue(s *expected, path string) tv {
	if v, ok := s.values[path]; ok {
		return v
	}
	return absent
}

func modelWrite(s *expected, path string, v tv) {
	if _, ok := s.pBefore[path]; !ok {
		s.pBefore[path] = modelValue(s, path)
	}
	s.pAfter[path] = v
	s.values[path] = v
	for _, p := range prefixes(path) {
		s.created[p] = true
		s.versions[p]++
		s.touched[p] = true
	}
	s.writes++
}

func modelWriteQuiet(s *expected, path string, v tv) {
	s.values[path] = v
	for _, p := range prefixes(path) {
		s.created[p] = true
	}
}

func modelApply(s *expected, values map[string]tv) {
	for p, v := range values {
		modelWrite(s, p, v)
	}
}

// resolveIndex mirrors version lookup: checkpoints committed with no
// writes in between share a version, and the latest one wins.
func resolveIndex(s *expected, idx int) int {
	w := s.points[idx].writes
	for j := len(s.points) - 1; j >= 0; j-- {
		if s.points[j].writes == w {
			return j
		}
	}
	return idx
}

func modelCurrentIndex(s *expected) int {
	if s.resume >= 0 {
		return s.resume
	}
	return len(s.points) - 1
}

func modelNavigate(s *expected, idx int) {
	target := resolveIndex(s, idx)
	cur := modelCurrentIndex(s)
	switch {
	case target < cur:
		for i := cur; i > target; i-- {
			modelApply(s, s.points[i].before)
		}
	case target > cur:
		for i := cur + 1; i <= target; i++ {
			modelApply(s, s.points[i].after)
		}
	}
	s.resume = target
}

func dumpTree(tree *Tree) map[string]tv {
	out := make(map[string]tv, len(exerciserPaths))
	for _, p := range exerciserPaths {
		out[p] = tree.GetPath(p).(tv)
	}
	return out
}

func compareDump(state commands.State, result commands.Result, what string) *gopter.PropResult {
	s := state.(*expected)
	actual := result.(map[string]tv)
	for _, p := range exerciserPaths {
		want := modelValue(s, p)
		if actual[p] != want {
			fmt.Printf("%s: path %s expected=%v actual=%v\n", what, p, want, actual[p])
			assert.Equal(testThingy, want, actual[p])
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
	}
	progress(what)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

type setCommand uint

func (n setCommand) Run(s commands.SystemUnderTest) commands.Result {
	path := pathFor(uint(n))
	s.(*system).tree.SetPath(path, valFor(uint(n)/7))
	s.(*system).cmdCount++
	return s.(*system).tree.GetPath(path)
}

func (n setCommand) NextState(state commands.State) commands.State {
	modelWrite(state.(*expected), pathFor(uint(n)), valFor(uint(n)/7))
	return state
}

func (n setCommand) PreCondition(state commands.State) bool {
	return true
}

func (n setCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := modelValue(state.(*expected), pathFor(uint(n)))
	if result.(Value) != Value(want) {
		fmt.Printf("setCommandPostCondition: expected=%v actual=%v\n", want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(n)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n setCommand) String() string {
	return fmt.Sprintf("Set(%s,%v)", pathFor(uint(n)), valFor(uint(n)/7))
}

var genSet = uintCommandGen(
	func(value uint) commands.Command { return setCommand(value) },
	func(command interface{}) uint { return uint(command.(setCommand)) })

type setQuietCommand uint

func (n setQuietCommand) Run(s commands.SystemUnderTest) commands.Result {
	path := pathFor(uint(n))
	s.(*system).tree.SetPathQuiet(path, valFor(uint(n)/7))
	s.(*system).cmdCount++
	return s.(*system).tree.GetPath(path)
}

func (n setQuietCommand) NextState(state commands.State) commands.State {
	modelWriteQuiet(state.(*expected), pathFor(uint(n)), valFor(uint(n)/7))
	return state
}

func (n setQuietCommand) PreCondition(state commands.State) bool {
	return true
}

func (n setQuietCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := modelValue(state.(*expected), pathFor(uint(n)))
	if result.(Value) != Value(want) {
		fmt.Printf("setQuietPostCondition: expected=%v actual=%v\n", want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(n)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n setQuietCommand) String() string {
	return fmt.Sprintf("SetQuiet(%s,%v)", pathFor(uint(n)), valFor(uint(n)/7))
}

var genSetQuiet = uintCommandGen(
	func(value uint) commands.Command { return setQuietCommand(value) },
	func(command interface{}) uint { return uint(command.(setQuietCommand)) })

type getCommand uint

func (n getCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*system).cmdCount++
	return s.(*system).tree.GetPath(pathFor(uint(n)))
}

func (n getCommand) NextState(state commands.State) commands.State {
	return state
}

func (n getCommand) PreCondition(state commands.State) bool {
	return true
}

func (n getCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := modelValue(state.(*expected), pathFor(uint(n)))
	if result.(Value) != Value(want) {
		fmt.Printf("getCommandPostCondition: path=%s expected=%v actual=%v\n", pathFor(uint(n)), want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(n)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n getCommand) String() string {
	return fmt.Sprintf("Get(%s)", pathFor(uint(n)))
}

var genGet = uintCommandGen(
	func(value uint) commands.Command { return getCommand(value) },
	func(command interface{}) uint { return uint(command.(getCommand)) })

type wasUpdatedCommand uint

func (n wasUpdatedCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*system).cmdCount++
	return s.(*system).tree.WasPathUpdated(pathFor(uint(n)))
}

func (n wasUpdatedCommand) NextState(state commands.State) commands.State {
	return state
}

func (n wasUpdatedCommand) PreCondition(state commands.State) bool {
	return true
}

func (n wasUpdatedCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := state.(*expected).touched[pathFor(uint(n))]
	if result.(bool) != want {
		fmt.Printf("wasUpdatedPostCondition: path=%s expected=%v actual=%v\n", pathFor(uint(n)), want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(n)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n wasUpdatedCommand) String() string {
	return fmt.Sprintf("WasUpdated(%s)", pathFor(uint(n)))
}

var genWasUpdated = uintCommandGen(
	func(value uint) commands.Command { return wasUpdatedCommand(value) },
	func(command interface{}) uint { return uint(command.(wasUpdatedCommand)) })

type pathVersionCommand uint

func (n pathVersionCommand) Run(s commands.SystemUnderTest) commands.Result {
	s.(*system).cmdCount++
	return s.(*system).tree.PathVersion(pathFor(uint(n)))
}

func (n pathVersionCommand) NextState(state commands.State) commands.State {
	return state
}

func (n pathVersionCommand) PreCondition(state commands.State) bool {
	return true
}

func (n pathVersionCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	s := state.(*expected)
	path := pathFor(uint(n))
	want := int64(-1)
	if s.created[path] {
		want = s.versions[path]
	}
	if result.(int64) != want {
		fmt.Printf("pathVersionPostCondition: path=%s expected=%d actual=%d\n", path, want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(n)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n pathVersionCommand) String() string {
	return fmt.Sprintf("PathVersion(%s)", pathFor(uint(n)))
}

var genPathVersion = uintCommandGen(
	func(value uint) commands.Command { return pathVersionCommand(value) },
	func(command interface{}) uint { return uint(command.(pathVersionCommand)) })

var VersionCommand = &commands.ProtoCommand{
	Name: "Version",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		s.(*system).cmdCount++
		return s.(*system).tree.Version()
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		want := state.(*expected).writes
		if result.(int64) != want {
			fmt.Printf("versionPostCondition: expected=%d actual=%d\n", want, result)
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Version")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

var ResetCommand = &commands.ProtoCommand{
	Name: "Reset",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		s.(*system).tree.ResetUpdateCycle()
		s.(*system).cmdCount++
		return s.(*system).tree.WasUpdated()
	},
	NextStateFunc: func(state commands.State) commands.State {
		state.(*expected).touched = map[string]bool{}
		return state
	},
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		if result.(bool) {
			fmt.Printf("resetPostCondition: still updated after reset\n")
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Reset")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

var CheckpointCommand = &commands.ProtoCommand{
	Name: "Checkpoint",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		version := s.(*system).tree.MakeSnapshot()
		s.(*system).versions = append(s.(*system).versions, version)
		s.(*system).cmdCount++
		return version
	},
	NextStateFunc: func(state commands.State) commands.State {
		s := state.(*expected)
		s.points = append(s.points, point{before: s.pBefore, after: s.pAfter, writes: s.writes})
		s.pBefore = map[string]tv{}
		s.pAfter = map[string]tv{}
		s.resume = -1
		return s
	},
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		s := state.(*expected)
		want := s.points[len(s.points)-1].writes
		if result.(int64) != want {
			fmt.Printf("checkpointPostCondition: expected version=%d actual=%d\n", want, result)
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Checkpoint")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

type goToCommand uint

func (n goToCommand) Run(s commands.SystemUnderTest) commands.Result {
	versions := s.(*system).versions
	s.(*system).tree.GoToSnapshot(versions[int(n)%len(versions)])
	s.(*system).cmdCount++
	return dumpTree(s.(*system).tree)
}

func (n goToCommand) NextState(state commands.State) commands.State {
	s := state.(*expected)
	modelNavigate(s, int(n)%len(s.points))
	return s
}

func (n goToCommand) PreCondition(state commands.State) bool {
	return len(state.(*expected).points) > 0
}

func (n goToCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compareDump(state, result, "goToPostCondition")
}

func (n goToCommand) String() string {
	return fmt.Sprintf("GoTo(%d)", uint(n))
}

var genGoTo = uintCommandGen(
	func(value uint) commands.Command { return goToCommand(value) },
	func(command interface{}) uint { return uint(command.(goToCommand)) })

type revertCommand uint

func (n revertCommand) Run(s commands.SystemUnderTest) commands.Result {
	versions := s.(*system).versions
	s.(*system).tree.RevertSnapshot(versions[int(n)%len(versions)])
	s.(*system).cmdCount++
	return dumpTree(s.(*system).tree)
}

func (n revertCommand) NextState(state commands.State) commands.State {
	s := state.(*expected)
	idx := resolveIndex(s, int(n)%len(s.points))
	modelApply(s, s.points[idx].before)
	return s
}

func (n revertCommand) PreCondition(state commands.State) bool {
	return len(state.(*expected).points) > 0
}

func (n revertCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compareDump(state, result, "revertPostCondition")
}

func (n revertCommand) String() string {
	return fmt.Sprintf("Revert(%d)", uint(n))
}

var genRevert = uintCommandGen(
	func(value uint) commands.Command { return revertCommand(value) },
	func(command interface{}) uint { return uint(command.(revertCommand)) })

func uintCommandGen(toCommand func(uint) commands.Command, fromCommand func(interface{}) uint) gopter.Gen {
	return gen.UIntRange(0, uimax).Map(func(value uint) commands.Command {
		return toCommand(value)
	}).WithShrinker(func(v interface{}) gopter.Shrink {
		return gen.UIntShrinker(fromCommand(v)).Map(func(value uint) commands.Command {
			return toCommand(value)
		})
	})
}

func sortedSeedKeys(seed map[uint]uint) []uint {
	keys := make([]uint, 0, len(seed))
	for k := range seed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var treeCommands = &commands.ProtoCommands{
	NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
		tree := newTestTree()
		seed := initialState.(*expected).seed
		for _, k := range sortedSeedKeys(seed) {
			tree.SetPath(pathFor(k), valFor(seed[k]))
		}
		progress("NewSystem")
		return &system{tree: tree}
	},
	DestroySystemUnderTestFunc: func(s commands.SystemUnderTest) {
		if h := len(s.(*system).versions); h > maxHistory {
			maxHistory = h
		}
		cmdCount += s.(*system).cmdCount
	},
	InitialStateGen: gen.MapOf(gen.UIntRange(0, uimax), gen.UIntRange(0, uimax)).Map(func(seed map[uint]uint) *expected {
		s := &expected{
			seed:     seed,
			values:   map[string]tv{},
			pBefore:  map[string]tv{},
			pAfter:   map[string]tv{},
			created:  map[string]bool{},
			versions: map[string]int64{},
			touched:  map[string]bool{},
			resume:   -1,
		}
		for _, k := range sortedSeedKeys(seed) {
			modelWrite(s, pathFor(k), valFor(seed[k]))
		}
		return s
	}),
	InitialPreConditionFunc: func(state commands.State) bool {
		_ = state.(*expected)
		return true
	},
	GenCommandFunc: func(state commands.State) gopter.Gen {
		return gen.Weighted(
			[]gen.WeightedGen{
				{Weight: 100, Gen: genSet},
				{Weight: 20, Gen: genSetQuiet},
				{Weight: 100, Gen: genGet},
				{Weight: 50, Gen: genWasUpdated},
				{Weight: 50, Gen: genPathVersion},
				{Weight: 50, Gen: gen.Const(VersionCommand)},
				{Weight: 20, Gen: gen.Const(ResetCommand)},
				{Weight: 30, Gen: gen.Const(CheckpointCommand)},
				{Weight: 30, Gen: genGoTo},
				{Weight: 10, Gen: genRevert},
			},
		)
	},
}

func TestExerciser(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	if !testing.Short() {
		parameters.MaxSize = 2048
	}
	properties := gopter.NewProperties(parameters)
	properties.Property("tree exerciser", commands.Prop(treeCommands))
	testThingy = t
	properties.TestingRun(t)
	testThingy = nil
	if !t.Failed() {
		assert.GreaterOrEqual(t, maxHistory, 2)
		fmt.Printf("deepest history: %d checkpoints\n", maxHistory)
		fmt.Printf("successful commands: %d\n", cmdCount)
	}
}
