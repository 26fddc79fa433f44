// Package verify provides debugging tools for instruction tables.
//
// Two complementary stages are implemented:
//
// 1. Static lint (lint.go): checks the table without running anything
//   - DEFINITION: every entry compiles on its own (template, format, syntax
//     arity, behavior) and mnemonics are unique
//   - COLLISION: no two fixed bit patterns can match the same word
//   - ROUNDTRIP: encoding random operands and decoding them back gives
//     the same operands, and the word is claimed by exactly its own entry
//
// 2. Functional check (funcsim.go): runs register-only instructions through
// a core.Emulator and compares the destination and fault against a 64-bit
// reference model.
//
// # Usage Example
//
//	issues := verify.RunLint(core.Definitions(), 64, 1)
//	for _, issue := range issues {
//	    log.Printf("[%s] %s: %s", issue.Type, issue.Mnemonic, issue.Message)
//	}
//
//	emu := core.NewEmulator(core.MustNewCatalog())
//	issues = verify.NewFunctionalChecker(emu, 1).Run()
package verify

import (
	"fmt"
)

// IssueType categorizes issues.
type IssueType string

const (
	IssueDefinition IssueType = "DEFINITION"
	IssueCollision  IssueType = "COLLISION"
	IssueRoundTrip  IssueType = "ROUNDTRIP"
	IssueBehavior   IssueType = "BEHAVIOR"
)

// Issue is a single problem found in an instruction table.
type Issue struct {
	Type     IssueType
	Mnemonic string
	Other    string // second mnemonic of a collision
	Word     uint32 // a word showing the problem, 0 if none
	Message  string
	Details  map[string]interface{}
}

func (i Issue) String() string {
	if i.Other != "" {
		return fmt.Sprintf("[%s] %s/%s: %s", i.Type, i.Mnemonic, i.Other, i.Message)
	}

	return fmt.Sprintf("[%s] %s: %s", i.Type, i.Mnemonic, i.Message)
}

// FilterIssues returns the issues of one type.
func FilterIssues(issues []Issue, t IssueType) []Issue {
	var out []Issue

	for _, issue := range issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}

	return out
}
