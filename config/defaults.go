package config

import (
	"classfmt/entities"
)

const (
	defaultPrintWidth = 80
	defaultTabWidth   = 2
)

// DefaultViewports are the responsive variants recognized when none are configured.
var DefaultViewports = []string{"sm", "md", "lg", "xl", "2xl"}

// DefaultCategories returns the built-in category configuration.
func DefaultCategories() entities.CategoryConfig {
	return entities.CategoryConfig{
		{Name: "Position", Prefixes: "relative absolute fixed sticky"},
		{Name: "PositionSides", Prefixes: "inset- top- right- bottom-"},
		{Name: "PositionSidesExt", Prefixes: "left- float- clear- isolate"},

		{Name: "Layout", Prefixes: "container block inline hidden"},
		{Name: "LayoutDisplay", Prefixes: "visible contents table flow-root"},
		{Name: "LayoutBox", Prefixes: "box- aspect- columns- break-"},
		{Name: "LayoutOverflow", Prefixes: "overflow- overscroll- object- z-"},

		{Name: "Flexbox", Prefixes: "flex flex- shrink- grow-"},
		{Name: "FlexUtils", Prefixes: "basis- order- wrap- flex-nowrap"},
		{Name: "Grid", Prefixes: "grid grid- col- row-"},
		{Name: "GridUtils", Prefixes: "auto- grid-flow- place- content-"},
		{Name: "Alignment", Prefixes: "items- justify- self- justify-self-"},

		{Name: "Sizing", Prefixes: "w- h- size- max-w-"},
		{Name: "SizingMinMax", Prefixes: "min-w- min-h- max-h- fit-"},

		{Name: "Spacing", Prefixes: "space- gap- divide-"},
		{Name: "Padding", Prefixes: "p- px- py- pt-"},
		{Name: "PaddingExt", Prefixes: "pb- pl- pr-"},
		{Name: "Margin", Prefixes: "m- mx- my- mt-"},
		{Name: "MarginExt", Prefixes: "mb- ml- mr-"},

		{Name: "Shape", Prefixes: "rounded rounded- circle- square-"},

		{Name: "Typography", Prefixes: "text- font- leading- tracking-"},
		{Name: "TypographyStyle", Prefixes: "italic not-italic underline no-underline"},
		{Name: "TypographyDecor", Prefixes: "decoration- underline-offset- uppercase lowercase"},
		{Name: "TypographyLayout", Prefixes: "truncate break- whitespace- list-"},
		{Name: "TypographyAlign", Prefixes: "align- text-left text-center text-right"},

		{Name: "Background", Prefixes: "bg- gradient- mix-blend- bg-blend-"},
		{Name: "Gradients", Prefixes: "from- via- to-"},

		{Name: "Borders", Prefixes: "border border- outline- outline"},
		{Name: "Rings", Prefixes: "ring ring- ring-offset- divide-"},

		{Name: "Shadow", Prefixes: "shadow- drop-shadow-"},

		{Name: "Effects", Prefixes: "opacity- filter- backdrop- blur-"},
		{Name: "Filters", Prefixes: "brightness- contrast- grayscale- hue-rotate-"},
		{Name: "FiltersExt", Prefixes: "invert- saturate- sepia-"},

		{Name: "Transforms", Prefixes: "transform- scale- rotate- translate-"},
		{Name: "TransformsExt", Prefixes: "skew- origin- will-change- perspective-"},

		{Name: "Transitions", Prefixes: "transition- duration- ease- delay-"},
		{Name: "Animation", Prefixes: "animate-"},

		{Name: "State", Prefixes: "group* peer* has-* data-*"},
		{Name: "StateInteractive", Prefixes: "open: checked: disabled: visited:"},
		{Name: "StateEmpty", Prefixes: "empty: read-only: required: valid:"},
		{Name: "StateAria", Prefixes: "aria-*"},

		{Name: "Action", Prefixes: "hover: active: focus: focus-"},
		{Name: "ActionExt", Prefixes: "focus-within: focus-visible: target: selection:"},

		{Name: "Before", Prefixes: "before:"},
		{Name: "After", Prefixes: "after:"},
		{Name: "Dark", Prefixes: "dark:"},
		{Name: "Media", Prefixes: "sm: md: lg: xl:"},
		{Name: "MediaExt", Prefixes: "2xl: min-[ max-[ print:"},
	}
}

// DefaultFormatterConfig returns a formatter configuration with default values.
func DefaultFormatterConfig() entities.FormatterConfig {
	return entities.FormatterConfig{
		Categories:            DefaultCategories(),
		Viewports:             append([]string(nil), DefaultViewports...),
		ViewportGrouping:      entities.GroupingSeparate,
		UncategorizedPosition: entities.UncategorizedAfter,
		PrintWidth:            defaultPrintWidth,
		TabWidth:              defaultTabWidth,
	}
}
