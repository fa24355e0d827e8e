package category

import "slices"

// NeutralColor is used when a category cannot be resolved.
const NeutralColor = "bg-gray-400"

// Palette lists the colors offered for custom categories.
var Palette = []string{
	"bg-red-500", "bg-orange-500", "bg-amber-500", "bg-yellow-500", "bg-lime-500", "bg-green-500",
	"bg-emerald-500", "bg-teal-500", "bg-cyan-500", "bg-sky-500", "bg-blue-500", "bg-indigo-500",
	"bg-violet-500", "bg-purple-500", "bg-fuchsia-500", "bg-pink-500", "bg-rose-500", "bg-gray-500",
}

var hexColors = map[string]string{
	"bg-red-500":     "#ef4444",
	"bg-orange-500":  "#f97316",
	"bg-amber-500":   "#f59e0b",
	"bg-yellow-500":  "#eab308",
	"bg-lime-500":    "#84cc16",
	"bg-green-500":   "#22c55e",
	"bg-emerald-500": "#10b981",
	"bg-teal-500":    "#14b8a6",
	"bg-cyan-500":    "#06b6d4",
	"bg-sky-500":     "#0ea5e9",
	"bg-blue-500":    "#3b82f6",
	"bg-indigo-500":  "#6366f1",
	"bg-violet-500":  "#8b5cf6",
	"bg-purple-500":  "#a855f7",
	"bg-fuchsia-500": "#d946ef",
	"bg-pink-500":    "#ec4899",
	"bg-rose-500":    "#f43f5e",
	"bg-gray-500":    "#6b7280",
	"bg-gray-400":    "#9ca3af",

	// Default categories.
	"bg-orange-600":  "#ea580c",
	"bg-slate-600":   "#475569",
	"bg-rose-600":    "#e11d48",
	"bg-emerald-600": "#059669",
	"bg-red-600":     "#dc2626",
	"bg-red-400":     "#f87171",
	"bg-slate-500":   "#64748b",
}

// Hex resolves a color token, falling back to the neutral color.
func Hex(token string) string {
	if hex, ok := hexColors[token]; ok {
		return hex
	}

	return hexColors[NeutralColor]
}

func ValidColor(token string) bool {
	return slices.Contains(Palette, token)
}

const (
	FallbackIcon = "MoreHorizontal"
	UnknownIcon  = "HelpCircle"
)

// Icons lists the icon names a category may use.
var Icons = []string{
	"Coffee", "Utensils", "Car", "Plane", "ShoppingBag", "Gift", "Home", "Wifi",
	"Gamepad2", "Music", "Heart", "Briefcase", "GraduationCap", "Smartphone", "MoreHorizontal",
}

func ValidIcon(name string) bool {
	return slices.Contains(Icons, name)
}

// ResolveIcon maps a stored icon name to one that can be displayed.
func ResolveIcon(name string) string {
	switch {
	case name == "":
		return FallbackIcon
	case ValidIcon(name):
		return name
	default:
		return UnknownIcon
	}
}
