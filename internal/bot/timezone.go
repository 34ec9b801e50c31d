package bot

// Timezone reactions on the join message: on-the-hour clock faces set an
// offset ahead of UTC, half-past faces an offset behind. Noon is UTC+0.
var timezoneEmoji = map[string]string{
	"🕛": "+0000",
	"🕐": "+0100",
	"🕑": "+0200",
	"🕒": "+0300",
	"🕓": "+0400",
	"🕔": "+0500",
	"🕕": "+0600",
	"🕖": "+0700",
	"🕗": "+0800",
	"🕘": "+0900",
	"🕙": "+1000",
	"🕜": "-0100",
	"🕝": "-0200",
	"🕞": "-0300",
	"🕟": "-0400",
	"🕠": "-0500",
	"🕡": "-0600",
	"🕢": "-0700",
	"🕣": "-0800",
	"🕤": "-0900",
}
