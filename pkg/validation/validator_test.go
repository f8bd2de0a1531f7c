package validation

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

func holds(*element.Element, *Context) bool { return true }
func fails(*element.Element, *Context) bool { return false }

func mustSpec(t *testing.T, root *Constraint, targets ...Version) *Specification {
	t.Helper()
	spec, err := NewSpecification(root, NewVersionSet(targets...))
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func validate(t *testing.T, root *Constraint, doc *element.Element, opts ...Option) Outcome {
	t.Helper()
	return NewValidator(mustSpec(t, root), opts...).Validate(doc)
}

// assertAttributed checks that every excluded version has a finding.
func assertAttributed(t *testing.T, out Outcome) {
	t.Helper()
	global := len(out.ErrorsFor(GlobalKey)) > 0
	for _, v := range universe.All().Difference(out.ValidVersions()).Slice() {
		if !global && len(out.ErrorsFor(KeyOf(v))) == 0 {
			t.Errorf("version %d excluded without a finding", v)
		}
	}
}

func TestValidate_UnknownTag(t *testing.T) {
	root := NewConstraint("WatchFace").AllVersions().MustBuild(universe)
	doc := element.New("WatchFace").With(element.New("Bad"))

	out := validate(t, root, doc)

	if out.Kind() != Failure {
		t.Fatalf("Kind() = %s, want failure", out.Kind())
	}
	if !out.ValidVersions().Empty() {
		t.Errorf("valid = %s, want {}", out.ValidVersions())
	}
	want := IllegalTag{Tag: "Bad", ElementPath: []string{"WatchFace"}}
	errs := out.ErrorsFor(GlobalKey)
	if len(errs) == 0 || !reflect.DeepEqual(errs[0], want) {
		t.Errorf("errors[GLOBAL] = %v, want [%v]", errs, want)
	}
}

func TestValidate_UnknownAttribute(t *testing.T) {
	root := NewConstraint("WatchFace").
		AllVersions().
		Allow(Attribute("width", IsInteger(), "width must be an integer")).
		MustBuild(universe)
	doc := element.New("WatchFace", "width", "450", "colour", "red")

	out := validate(t, root, doc)

	if out.Kind() != Failure {
		t.Fatalf("Kind() = %s, want failure", out.Kind())
	}
	want := IllegalAttribute{Name: "colour", ElementPath: []string{"WatchFace"}}
	if errs := out.ErrorsFor(GlobalKey); len(errs) != 1 || !reflect.DeepEqual(errs[0], want) {
		t.Errorf("errors[GLOBAL] = %v, want [%v]", errs, want)
	}
}

func TestValidate_VersionScopedRequiredFailure(t *testing.T) {
	root := NewConstraint("WatchFace").
		AllVersions().
		Allow(Attribute("width", IsInteger(), "width must be an integer")).
		Versions(4, 4).
		Require(Satisfies(HasAttribute("height"), "height is required")).
		MustBuild(universe)
	doc := element.New("WatchFace", "width", "450")

	out := validate(t, root, doc)

	if out.Kind() != PartialSuccess {
		t.Fatalf("Kind() = %s, want partial-success", out.Kind())
	}
	if !out.ValidVersions().Equal(NewVersionSet(1, 2, 3)) {
		t.Errorf("valid = %s, want {1,2,3}", out.ValidVersions())
	}
	want := ErrorMap{KeyOf(4): {RequiredConditionFailed{Text: "height is required", ElementPath: []string{"WatchFace"}}}}
	if !reflect.DeepEqual(out.Errors(), want) {
		t.Errorf("errors = %v, want %v", out.Errors(), want)
	}
}

func TestValidate_VersionEliminationThroughAllow(t *testing.T) {
	root := NewConstraint("WatchFace").
		Versions(4, 4).
		Allow(Satisfies(holds, "uses a version 4 feature")).
		MustBuild(universe)

	out := validate(t, root, element.New("WatchFace"))

	if out.Kind() != PartialSuccess {
		t.Fatalf("Kind() = %s, want partial-success", out.Kind())
	}
	if !out.ValidVersions().Equal(NewVersionSet(4)) {
		t.Errorf("valid = %s, want {4}", out.ValidVersions())
	}
	want := VersionElimination{Text: "uses a version 4 feature", Permitted: NewVersionSet(4), ElementPath: []string{"WatchFace"}}
	for _, v := range []Version{1, 2, 3} {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || !reflect.DeepEqual(errs[0], want) {
			t.Errorf("errors[%d] = %v, want [%v]", v, errs, want)
		}
	}
	if len(out.ErrorsFor(KeyOf(4))) != 0 {
		t.Errorf("errors[4] = %v, want none", out.ErrorsFor(KeyOf(4)))
	}
}

func TestValidate_AllowedConditionNotExercised(t *testing.T) {
	root := NewConstraint("WatchFace").
		Versions(4, 4).
		Allow(Satisfies(fails, "uses a version 4 feature")).
		MustBuild(universe)

	out := validate(t, root, element.New("WatchFace"))
	if out.Kind() != Success {
		t.Errorf("Kind() = %s, want success", out.Kind())
	}
}

func TestValidate_AllVersionsFailure(t *testing.T) {
	root := NewConstraint("WatchFace").
		Versions(1, 2).
		Require(Satisfies(fails, "old rule")).
		Versions(3, 4).
		Require(Satisfies(fails, "new rule")).
		MustBuild(universe)

	out := validate(t, root, element.New("WatchFace"))

	if out.Kind() != Failure {
		t.Fatalf("Kind() = %s, want failure", out.Kind())
	}
	for _, v := range universe.All().Slice() {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || errs[0].Kind() != KindRequiredConditionFailed {
			t.Errorf("errors[%d] = %v, want one required-condition finding", v, errs)
		}
	}
}

func TestValidate_Deterministic(t *testing.T) {
	root := sampleWatchFace()
	doc := element.New("WatchFace", "width", "450", "height", "x").With(
		element.New("Scene").With(
			element.New("Group", "name", "g").With(element.New("PartText"), element.New("PartImage")),
		),
		element.New("Scene"),
	)
	v := NewValidator(mustSpec(t, root), CollectAll())
	first := v.Validate(doc)
	second := v.Validate(doc)
	if !first.Equal(second) {
		t.Errorf("validation is not deterministic:\n%v\n%v", first.Errors(), second.Errors())
	}
	assertAttributed(t, first)
}

func TestValidate_RequiredAttribute(t *testing.T) {
	root := NewConstraint("WatchFace").
		AllVersions().
		Require(
			Attribute("width", IsInteger(), "width must be an integer"),
			Attribute("clipShape", OneOf("NONE", "CIRCLE"), "bad clip shape", Default("NONE")),
		).
		MustBuild(universe)

	out := validate(t, root, element.New("WatchFace"))
	if out.Kind() != Failure {
		t.Fatalf("Kind() = %s, want failure", out.Kind())
	}
	errs := out.ErrorsFor(KeyOf(1))
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), `"width"`) {
		t.Errorf("errors[1] = %v, want only the missing width", errs)
	}
	assertAttributed(t, out)

	out = validate(t, root, element.New("WatchFace", "width", "wide"))
	errs = out.ErrorsFor(KeyOf(2))
	if len(errs) != 1 || errs[0].Kind() != KindAttributeValue {
		t.Errorf("errors[2] = %v, want an attribute value finding", errs)
	}
}

func TestValidate_AttributeOnlyInNewerVersions(t *testing.T) {
	root := NewConstraint("Group").
		AllVersions().
		Allow(Attribute("name", nil, "")).
		From(3).
		Allow(Attribute("renderMode", OneOf("SOURCE", "MASK"), "invalid render mode")).
		MustBuild(universe)

	out := validate(t, root, element.New("Group", "name", "g", "renderMode", "MASK"))
	if !out.ValidVersions().Equal(NewVersionSet(3, 4)) {
		t.Errorf("valid = %s, want {3,4}", out.ValidVersions())
	}
	for _, v := range []Version{1, 2} {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || errs[0].Kind() != KindVersionElimination {
			t.Errorf("errors[%d] = %v, want a version elimination", v, errs)
		}
	}

	out = validate(t, root, element.New("Group", "renderMode", "BLEND"))
	if !out.ValidVersions().Empty() {
		t.Errorf("valid = %s, want {}", out.ValidVersions())
	}
	for _, v := range []Version{3, 4} {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || errs[0].Kind() != KindAttributeValue {
			t.Errorf("errors[%d] = %v, want an attribute value finding", v, errs)
		}
	}
}

func TestValidate_ChildOccurrence(t *testing.T) {
	scene := Lazy(func() *Constraint { return NewConstraint("Scene").AllVersions().MustBuild(universe) })
	root := NewConstraint("WatchFace").
		AllVersions().
		Require(ChildElement("Scene", scene, Occurs(1, 1))).
		MustBuild(universe)

	out := validate(t, root, element.New("WatchFace"))
	if errs := out.ErrorsFor(KeyOf(1)); len(errs) != 1 || errs[0].Kind() != KindRequiredConditionFailed {
		t.Errorf("missing scene: errors[1] = %v", errs)
	}

	out = validate(t, root, element.New("WatchFace").With(element.New("Scene"), element.New("Scene")))
	errs := out.ErrorsFor(KeyOf(1))
	if len(errs) != 1 {
		t.Fatalf("two scenes: errors[1] = %v", errs)
	}
	occ, ok := errs[0].(TagOccurrence)
	if !ok || occ.Actual != 2 || occ.Min != 1 || occ.Max != 1 {
		t.Errorf("two scenes: got %#v", errs[0])
	}

	out = validate(t, root, element.New("WatchFace").With(element.New("Scene")))
	if out.Kind() != Success {
		t.Errorf("one scene: Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}
}

func TestValidate_AllowedChildBounds(t *testing.T) {
	leaf := Lazy(func() *Constraint { return NewConstraint("Metadata").AllVersions().MustBuild(universe) })
	root := NewConstraint("WatchFace").
		AllVersions().
		Allow(ChildElement("Metadata", leaf, Occurs(1, 2))).
		MustBuild(universe)

	if out := validate(t, root, element.New("WatchFace")); out.Kind() != Success {
		t.Errorf("absent allowed child: Kind() = %s", out.Kind())
	}
	doc := element.New("WatchFace").With(element.New("Metadata"), element.New("Metadata"), element.New("Metadata"))
	if out := validate(t, root, doc); out.Kind() != Failure {
		t.Errorf("three allowed children: Kind() = %s", out.Kind())
	}
}

func TestValidate_Choice(t *testing.T) {
	leaf := func(tag string) ConstraintFactory {
		return Lazy(func() *Constraint { return NewConstraint(tag).AllVersions().MustBuild(universe) })
	}
	root := NewConstraint("Group").
		AllVersions().
		Require(ChoiceOf([]*ChildRule{
			ChildElement("PartText", leaf("PartText")),
			ChildElement("PartImage", leaf("PartImage")),
		}, ChoiceMessage("a group holds exactly one part"))).
		MustBuild(universe)

	tests := []struct {
		name     string
		children []*element.Element
		actual   int
	}{
		{"none", nil, 0},
		{"both", []*element.Element{element.New("PartText"), element.New("PartImage")}, 2},
		{"two of one kind", []*element.Element{element.New("PartText"), element.New("PartText")}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := validate(t, root, element.New("Group").With(tt.children...))
			if out.Kind() != Failure {
				t.Fatalf("Kind() = %s, want failure", out.Kind())
			}
			errs := out.ErrorsFor(KeyOf(1))
			if len(errs) != 1 {
				t.Fatalf("errors[1] = %v, want one finding", errs)
			}
			occ, ok := errs[0].(TagOccurrence)
			if !ok || occ.Tag != "PartText|PartImage" || occ.Actual != tt.actual {
				t.Errorf("got %#v", errs[0])
			}
		})
	}

	out := validate(t, root, element.New("Group").With(element.New("PartImage")))
	if out.Kind() != Success {
		t.Errorf("single alternative: Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}
}

func TestValidate_NestedFindingsCarryPath(t *testing.T) {
	root := sampleWatchFace()
	doc := element.New("WatchFace", "width", "450", "height", "450").With(
		element.New("Scene").With(element.New("Group", "name", "g", "alpha", "255")),
	)

	out := validate(t, root, doc)

	want := IllegalAttribute{Name: "alpha", ElementPath: []string{"WatchFace", "Scene", "Group"}}
	if errs := out.ErrorsFor(GlobalKey); len(errs) != 1 || !reflect.DeepEqual(errs[0], want) {
		t.Errorf("errors[GLOBAL] = %v, want [%v]", errs, want)
	}
}

func TestValidate_ShortCircuitAndCollectAll(t *testing.T) {
	root := sampleWatchFace()
	doc := element.New("WatchFace", "width", "450", "height", "450", "bogus", "1").With(
		element.New("Scene", "bogus", "2"),
	)

	short := validate(t, root, doc)
	if n := len(short.ErrorsFor(GlobalKey)); n != 1 {
		t.Errorf("default mode: %d global findings, want 1", n)
	}

	full := validate(t, root, doc, CollectAll())
	if n := len(full.ErrorsFor(GlobalKey)); n != 2 {
		t.Errorf("collect-all mode: %d global findings, want 2: %v", n, full.ErrorsFor(GlobalKey))
	}
}

func TestValidate_ClausesBindingDifferentConstraints(t *testing.T) {
	oldShape := Lazy(func() *Constraint {
		return NewConstraint("Shape").AllVersions().Allow(Attribute("a", nil, "")).MustBuild(universe)
	})
	newShape := Lazy(func() *Constraint {
		return NewConstraint("Shape").AllVersions().Allow(Attribute("b", nil, "")).MustBuild(universe)
	})
	root := NewConstraint("Group").
		Versions(1, 2).Allow(ChildElement("Shape", oldShape)).
		Versions(3, 4).Allow(ChildElement("Shape", newShape)).
		MustBuild(universe)

	out := validate(t, root, element.New("Group").With(element.New("Shape", "b", "1")))

	if !out.ValidVersions().Equal(NewVersionSet(3, 4)) {
		t.Errorf("valid = %s, want {3,4}", out.ValidVersions())
	}
	if len(out.ErrorsFor(GlobalKey)) != 0 {
		t.Errorf("errors[GLOBAL] = %v, want none", out.ErrorsFor(GlobalKey))
	}
	for _, v := range []Version{1, 2} {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || errs[0].Kind() != KindIllegalAttribute {
			t.Errorf("errors[%d] = %v, want an illegal attribute", v, errs)
		}
	}
}

func TestValidate_ScopeInheritance(t *testing.T) {
	inner := Lazy(func() *Constraint {
		return NewConstraint("Variant").
			AllVersions().
			Require(Attribute("target", nil, "")).
			Require(Satisfies(func(el *element.Element, ctx *Context) bool {
				target, _ := el.Attr("target")
				_, declared := ctx.Scope(target)
				return declared
			}, "target must name an attribute of an enclosing element")).
			MustBuild(universe)
	})
	root := NewConstraint("Group").
		AllVersions().
		Allow(Attribute("alpha", nil, ""), Attribute("x", nil, ""), ChildElement("Variant", inner)).
		MustBuild(universe)

	ok := validate(t, root, element.New("Group", "alpha", "255").With(element.New("Variant", "target", "alpha")))
	if ok.Kind() != Success {
		t.Errorf("declared target: Kind() = %s, errors = %v", ok.Kind(), ok.Errors())
	}
	bad := validate(t, root, element.New("Group", "x", "1").With(element.New("Variant", "target", "alpha")))
	if bad.Kind() != Failure {
		t.Errorf("undeclared target: Kind() = %s", bad.Kind())
	}
}

func TestValidate_Content(t *testing.T) {
	root := NewConstraint("Expression").
		AllVersions().
		Require(TextContent(IsFloat(), "expression must be numeric")).
		MustBuild(universe)

	if out := validate(t, root, element.New("Expression").WithText(" 42 ")); out.Kind() != Success {
		t.Errorf("numeric: Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}
	out := validate(t, root, element.New("Expression").WithText("abc"))
	if errs := out.ErrorsFor(KeyOf(1)); len(errs) != 1 || errs[0].Kind() != KindContent {
		t.Errorf("text: errors[1] = %v", errs)
	}
	out = validate(t, root, element.New("Expression").WithText("  \n"))
	if errs := out.ErrorsFor(KeyOf(1)); len(errs) != 1 || errs[0].Kind() != KindRequiredConditionFailed {
		t.Errorf("blank: errors[1] = %v", errs)
	}
}

func TestValidate_RootMismatch(t *testing.T) {
	root := NewConstraint("WatchFace").AllVersions().MustBuild(universe)
	out := validate(t, root, element.New("Clock"))
	want := IllegalTag{Tag: "Clock"}
	if errs := out.ErrorsFor(GlobalKey); len(errs) != 1 || !reflect.DeepEqual(errs[0], want) {
		t.Errorf("errors[GLOBAL] = %v, want [%v]", errs, want)
	}
}

func TestValidate_RecursiveConstraint(t *testing.T) {
	var group ConstraintFactory
	group = Lazy(func() *Constraint {
		return NewConstraint("Group").
			AllVersions().
			Allow(Attribute("name", nil, ""), ChildElement("Group", func() *Constraint { return group() })).
			MustBuild(universe)
	})
	root := NewConstraint("Scene").AllVersions().Allow(ChildElement("Group", group)).MustBuild(universe)

	doc := element.New("Scene")
	cur := doc
	for range 20 {
		next := element.New("Group", "name", "n")
		cur.With(next)
		cur = next
	}
	if out := validate(t, root, doc); out.Kind() != Success {
		t.Errorf("Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}
}

func TestNewSpecification_RecursiveFactoryWithoutLazy(t *testing.T) {
	calls := 0
	var group ConstraintFactory
	group = func() *Constraint {
		calls++
		if calls > 1000 {
			t.Fatalf("group factory resolved %d times", calls)
		}
		return NewConstraint("Group").
			AllVersions().
			Allow(Attribute("name", nil, ""), ChildElement("Group", group, MinOccurs(0))).
			MustBuild(universe)
	}
	root := NewConstraint("Scene").AllVersions().Allow(ChildElement("Group", group, MinOccurs(0))).MustBuild(universe)

	spec, err := NewSpecification(root, VersionSet{})
	if err != nil {
		t.Fatal(err)
	}

	doc := element.New("Scene")
	cur := doc
	for range 5 {
		next := element.New("Group", "name", "n")
		cur.With(next)
		cur = next
	}
	if out := NewValidator(spec).Validate(doc); out.Kind() != Success {
		t.Errorf("Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}
}

func TestValidate_RecursiveFactoryForOtherUniverse(t *testing.T) {
	stray := func() *Constraint { return NewConstraint("Group").AllVersions().MustBuild(MustVersionRange(1, 3)) }
	group := func() *Constraint {
		return NewConstraint("Group").AllVersions().Allow(ChildElement("Group", stray, MinOccurs(0))).MustBuild(universe)
	}
	root := NewConstraint("Scene").AllVersions().Allow(ChildElement("Group", group, MinOccurs(0))).MustBuild(universe)

	v := NewValidator(mustSpec(t, root))
	if out := v.Validate(element.New("Scene").With(element.New("Group"))); out.Kind() != Success {
		t.Fatalf("one level: Kind() = %s, errors = %v", out.Kind(), out.Errors())
	}

	out := v.Validate(element.New("Scene").With(element.New("Group").With(element.New("Group"))))
	if !out.ValidVersions().Empty() {
		t.Errorf("valid = %s, want {}", out.ValidVersions())
	}
	errs := out.ErrorsFor(GlobalKey)
	if len(errs) != 1 || errs[0].Kind() != KindUnknown {
		t.Fatalf("errors[GLOBAL] = %v, want one unknown finding", errs)
	}
	if !reflect.DeepEqual(errs[0].Path(), []string{"Scene", "Group"}) {
		t.Errorf("path = %v, want [Scene Group]", errs[0].Path())
	}
}

func TestValidate_RepeatedChildEliminatesOnce(t *testing.T) {
	leaf := Lazy(func() *Constraint { return NewConstraint("Flavor").AllVersions().MustBuild(universe) })
	root := NewConstraint("WatchFace").
		From(3).
		Allow(ChildElement("Flavor", leaf, MinOccurs(0))).
		MustBuild(universe)
	doc := element.New("WatchFace").With(element.New("Flavor"), element.New("Flavor"), element.New("Flavor"))

	out := validate(t, root, doc)
	if !out.ValidVersions().Equal(NewVersionSet(3, 4)) {
		t.Errorf("valid = %s, want {3,4}", out.ValidVersions())
	}
	for _, v := range []Version{1, 2} {
		errs := out.ErrorsFor(KeyOf(v))
		if len(errs) != 1 || errs[0].Kind() != KindVersionElimination {
			t.Errorf("errors[%d] = %v, want one version elimination", v, errs)
		}
	}
}

func TestValidate_Concurrent(t *testing.T) {
	var group ConstraintFactory
	group = Lazy(func() *Constraint {
		return NewConstraint("Group").
			AllVersions().
			Allow(Attribute("name", nil, ""), ChildElement("Group", func() *Constraint { return group() }, MinOccurs(0))).
			From(3).
			Allow(Attribute("renderMode", OneOf("SOURCE", "MASK"), "invalid render mode")).
			MustBuild(universe)
	})
	root := NewConstraint("Scene").AllVersions().Allow(ChildElement("Group", group)).MustBuild(universe)
	v := NewValidator(mustSpec(t, root))

	docs := []*element.Element{
		element.New("Scene").With(element.New("Group", "name", "a").With(element.New("Group", "renderMode", "MASK"))),
		element.New("Scene").With(element.New("Group", "renderMode", "BLEND")),
		element.New("Scene").With(element.New("Group").With(element.New("Sparkle"))),
	}
	want := make([]Outcome, len(docs))
	for i, d := range docs {
		want[i] = v.Validate(d)
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				d := (w + i) % len(docs)
				if got := v.Validate(docs[d]); !got.Equal(want[d]) {
					t.Errorf("doc %d: concurrent outcome differs from serial one", d)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFindValidVersions(t *testing.T) {
	root := NewConstraint("WatchFace").
		Versions(1, 1).
		Require(Satisfies(fails, "v1 rule")).
		MustBuild(universe)
	v := NewValidator(mustSpec(t, root, 1, 2, 3))

	got := v.FindValidVersions(element.New("WatchFace"))
	if !got.Equal(NewVersionSet(2, 3)) {
		t.Errorf("FindValidVersions = %s, want {2,3}", got)
	}
}

func TestNewSpecification_Errors(t *testing.T) {
	root := NewConstraint("WatchFace").AllVersions().MustBuild(universe)
	if _, err := NewSpecification(root, NewVersionSet(5)); err == nil {
		t.Error("expected error for target outside the universe")
	}
	if _, err := NewSpecification(nil, VersionSet{}); err == nil {
		t.Error("expected error for nil root")
	}

	other := MustVersionRange(1, 3)
	child := Lazy(func() *Constraint { return NewConstraint("Scene").AllVersions().MustBuild(other) })
	mixed := NewConstraint("WatchFace").AllVersions().Allow(ChildElement("Scene", child)).MustBuild(universe)
	if _, err := NewSpecification(mixed, VersionSet{}); err == nil {
		t.Error("expected error for constraints built for different universes")
	}
}

func TestBuild_Errors(t *testing.T) {
	leaf := Lazy(func() *Constraint { return NewConstraint("X").AllVersions().MustBuild(universe) })
	tests := []struct {
		name string
		b    *ConstraintBuilder
	}{
		{"version above universe", NewConstraint("A").Versions(2, 5).b()},
		{"inverted clause", NewConstraint("A").Versions(3, 2).b()},
		{"from outside universe", NewConstraint("A").From(9).b()},
		{"negative occurs", NewConstraint("A").AllVersions().Allow(ChildElement("X", leaf, Occurs(-1, 2))).b()},
		{"max below min", NewConstraint("A").AllVersions().Allow(ChildElement("X", leaf, Occurs(3, 2))).b()},
		{"nil factory", NewConstraint("A").AllVersions().Allow(ChildElement("X", nil)).b()},
		{"empty choice", NewConstraint("A").AllVersions().Require(ChoiceOf(nil)).b()},
		{"condition without predicate", NewConstraint("A").AllVersions().Require(Satisfies(nil, "x")).b()},
		{"empty tag", NewConstraint("").AllVersions().b()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(universe); err == nil {
				t.Error("expected construction error")
			}
		})
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBuild should panic on a construction error")
		}
	}()
	NewConstraint("A").Versions(0, 1).MustBuild(universe)
}

// b returns the constraint builder behind a clause, for table tests.
func (c *ClauseBuilder) b() *ConstraintBuilder { return c.parent }

func sampleWatchFace() *Constraint {
	var group ConstraintFactory
	part := func(tag string) ConstraintFactory {
		return Lazy(func() *Constraint {
			return NewConstraint(tag).AllVersions().Allow(Attribute("x", IsFloat(), "x must be a number")).MustBuild(universe)
		})
	}
	group = Lazy(func() *Constraint {
		return NewConstraint("Group").
			AllVersions().
			Require(Attribute("name", NonEmpty(), "name must not be empty")).
			Allow(
				ChildElement("PartText", part("PartText")),
				ChildElement("PartImage", part("PartImage")),
				ChildElement("Group", func() *Constraint { return group() }),
			).
			MustBuild(universe)
	})
	scene := Lazy(func() *Constraint {
		return NewConstraint("Scene").AllVersions().Allow(ChildElement("Group", group)).MustBuild(universe)
	})
	return NewConstraint("WatchFace").
		AllVersions().
		Require(
			Attribute("width", IsInteger(), "width must be an integer"),
			Attribute("height", IsInteger(), "height must be an integer"),
			ChildElement("Scene", scene, Occurs(1, 1)),
		).
		MustBuild(universe)
}
