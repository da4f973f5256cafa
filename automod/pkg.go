package automod

import (
	"github.com/veil-social/veil/automod/countstore"
	"github.com/veil-social/veil/automod/engine"
	"github.com/veil-social/veil/automod/planner"
)

type Engine = engine.Engine
type Submission = engine.Submission
type EmitFunc = engine.EmitFunc
type Action = engine.Action
type ActionFunc = engine.ActionFunc
type ActionPlanner = engine.ActionPlanner
type ImageFetcher = engine.ImageFetcher

type Planner = planner.Planner
type ActionSpec = planner.ActionSpec
type PlannedAction = planner.PlannedAction

var (
	NewEngine  = engine.NewEngine
	NewPlanner = planner.NewPlanner

	PeriodTotal = countstore.PeriodTotal
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour
)
