package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/notify"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	StateNone     lipgloss.Color
	StateDraft    lipgloss.Color
	StateEdited   lipgloss.Color
	StateApproved lipgloss.Color

	NoticeInfo    lipgloss.Color
	NoticeSuccess lipgloss.Color
	NoticeWarning lipgloss.Color
	NoticeError   lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StateNone:     lipgloss.Color("245"),
	StateDraft:    lipgloss.Color("75"),
	StateEdited:   lipgloss.Color("214"),
	StateApproved: lipgloss.Color("114"),

	NoticeInfo:    lipgloss.Color("75"),
	NoticeSuccess: lipgloss.Color("114"),
	NoticeWarning: lipgloss.Color("214"),
	NoticeError:   lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}

// StateColor picks the chip color for a lifecycle state.
func (theme Theme) StateColor(state domain.State) lipgloss.Color {
	switch state {
	case domain.StateDraft:
		return theme.StateDraft
	case domain.StateEdited:
		return theme.StateEdited
	case domain.StateApproved:
		return theme.StateApproved
	default:
		return theme.StateNone
	}
}

// NoticeColor picks the toast color for a notice level.
func (theme Theme) NoticeColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.LevelSuccess:
		return theme.NoticeSuccess
	case notify.LevelWarning:
		return theme.NoticeWarning
	case notify.LevelError:
		return theme.NoticeError
	default:
		return theme.NoticeInfo
	}
}
