// Package testselector applies runbook test case rules to a catalog.
package testselector

import (
	"fmt"
	"regexp"

	"github.com/go-logr/logr"

	"github.com/lisa-platform/lisa/internal/runbook"
	"github.com/lisa-platform/lisa/internal/testsuite"
)

// RuntimeCase is a selected case with the settings of the rule that last
// selected or updated it.
type RuntimeCase struct {
	Metadata          testsuite.CaseMetadata
	Times             int
	Retry             int
	UseNewEnvironment bool
	IgnoreFailure     bool
	Environment       string
}

// Select applies rules in order and returns the selected cases in the order
// they were first selected. A case that runs n times appears n times.
// Without rules every case is selected once.
func Select(log logr.Logger, rules []runbook.TestCase, cases []testsuite.CaseMetadata) ([]RuntimeCase, error) {
	if len(rules) == 0 {
		out := make([]RuntimeCase, 0, len(cases))
		for _, c := range cases {
			out = append(out, RuntimeCase{Metadata: c, Times: 1})
		}
		return out, nil
	}

	s := newSelection()
	for i, rule := range rules {
		if !rule.Enabled() {
			log.V(1).Info("skipping disabled rule", "rule", i, "name", rule.Name)
			continue
		}
		m, err := newMatcher(rule.Criteria)
		if err != nil {
			return nil, fmt.Errorf("testcase[%d]: %w", i, err)
		}
		matched := 0
		for _, c := range cases {
			if !m.match(c) {
				continue
			}
			matched++
			if err := s.apply(log, rule, c); err != nil {
				return nil, fmt.Errorf("testcase[%d]: %w", i, err)
			}
		}
		log.V(1).Info("applied rule", "rule", i, "name", rule.Name, "action", rule.SelectAction, "matched", matched)
	}
	return s.expand(), nil
}

type selection struct {
	order         []string
	selected      map[string]*RuntimeCase
	forceIncluded map[string]bool
	forceExcluded map[string]bool
}

func newSelection() *selection {
	return &selection{
		selected:      map[string]*RuntimeCase{},
		forceIncluded: map[string]bool{},
		forceExcluded: map[string]bool{},
	}
}

func (s *selection) apply(log logr.Logger, rule runbook.TestCase, c testsuite.CaseMetadata) error {
	name := c.FullName()
	switch rule.SelectAction {
	case runbook.SelectActionForceInclude:
		if s.forceExcluded[name] {
			return fmt.Errorf("%w: %s is force excluded", ErrForceConflict, name)
		}
		s.forceIncluded[name] = true
		s.include(rule, c)
	case runbook.SelectActionForceExclude:
		if s.forceIncluded[name] {
			return fmt.Errorf("%w: %s is force included", ErrForceConflict, name)
		}
		s.forceExcluded[name] = true
		s.remove(name)
	case runbook.SelectActionExclude:
		if s.forceIncluded[name] {
			log.V(1).Info("case is force included, ignoring exclude", "case", name)
			return nil
		}
		s.remove(name)
	case runbook.SelectActionNone:
		if rc, ok := s.selected[name]; ok {
			setFromRule(rc, rule)
		}
	case runbook.SelectActionInclude, "":
		if s.forceExcluded[name] {
			log.V(1).Info("case is force excluded, ignoring include", "case", name)
			return nil
		}
		s.include(rule, c)
	default:
		return fmt.Errorf("unknown select action %q", rule.SelectAction)
	}
	return nil
}

func (s *selection) include(rule runbook.TestCase, c testsuite.CaseMetadata) {
	name := c.FullName()
	rc, ok := s.selected[name]
	if !ok {
		rc = &RuntimeCase{Metadata: c}
		s.selected[name] = rc
		s.order = append(s.order, name)
	}
	setFromRule(rc, rule)
}

func (s *selection) remove(name string) {
	if _, ok := s.selected[name]; !ok {
		return
	}
	delete(s.selected, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *selection) expand() []RuntimeCase {
	out := make([]RuntimeCase, 0, len(s.order))
	for _, name := range s.order {
		rc := s.selected[name]
		for i := 0; i < rc.Times; i++ {
			out = append(out, *rc)
		}
	}
	return out
}

func setFromRule(rc *RuntimeCase, rule runbook.TestCase) {
	rc.Times = max(rule.Times, 1)
	rc.Retry = rule.Retry
	rc.UseNewEnvironment = rule.UseNewEnvironment
	rc.IgnoreFailure = rule.IgnoreFailure
	rc.Environment = rule.Environment
}

// matcher is a compiled Criteria. Patterns match from the start of the value.
type matcher struct {
	name, area, category *regexp.Regexp
	priorities           []int
	tags                 []string
}

func newMatcher(c *runbook.Criteria) (*matcher, error) {
	m := &matcher{}
	if c == nil {
		return m, nil
	}
	var err error
	if m.name, err = compilePrefix("name", c.Name); err != nil {
		return nil, err
	}
	if m.area, err = compilePrefix("area", c.Area); err != nil {
		return nil, err
	}
	if m.category, err = compilePrefix("category", c.Category); err != nil {
		return nil, err
	}
	m.priorities = c.Priority
	m.tags = c.Tags
	return m, nil
}

func compilePrefix(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidCriteria, field, pattern, err)
	}
	return re, nil
}

func (m *matcher) match(c testsuite.CaseMetadata) bool {
	if m.name != nil && !m.name.MatchString(c.Name) && !m.name.MatchString(c.FullName()) {
		return false
	}
	if m.area != nil && !m.area.MatchString(c.Area) {
		return false
	}
	if m.category != nil && !m.category.MatchString(c.Category) {
		return false
	}
	if len(m.priorities) > 0 && !containsInt(m.priorities, c.Priority) {
		return false
	}
	if len(m.tags) > 0 && !anyTag(m.tags, c.Tags) {
		return false
	}
	return true
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func anyTag(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
