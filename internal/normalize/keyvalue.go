package normalize

import (
	"regexp"
	"strings"
)

var (
	// pairPattern matches key="quoted value" or key=bareword.
	pairPattern = regexp.MustCompile(`(\w+)=("([^"]*)"|([^\s"]+))`)

	// bracketPairPattern matches FortiSIEM style [key]=value, ended by a
	// comma or closing bracket.
	bracketPairPattern = regexp.MustCompile(`\[(\w+)\]=([^,\]]+)`)
)

// ScanPairs collects the key/value tokens in line. Bracketed pairs are
// applied after plain pairs and win for their keys.
func ScanPairs(line string) map[string]string {
	pairs := make(map[string]string)

	for _, m := range pairPattern.FindAllStringSubmatch(line, -1) {
		if m[3] != "" {
			pairs[m[1]] = m[3]
		} else {
			pairs[m[1]] = m[4]
		}
	}

	for _, m := range bracketPairPattern.FindAllStringSubmatch(line, -1) {
		pairs[m[1]] = strings.TrimSpace(m[2])
	}

	return pairs
}

// ParseKeyValue extracts incident fields from a FortiGate key=value line.
// It never fails: absent keys leave their fields Missing.
func ParseKeyValue(line string) KeyValueFields {
	pairs := ScanPairs(line)
	get := func(key string) Field {
		if v, ok := pairs[key]; ok {
			return Present(v)
		}
		return Missing
	}

	return KeyValueFields{
		Common: Common{
			IncidentID:     get("logid"),
			RawSeverity:    get("level"),
			RuleName:       firstPresent(get("profile"), get("msg"), get("phLogDetail")),
			SourceIP:       get("srcip"),
			SourceHost:     firstPresent(get("devname"), get("hostname")),
			DestinationIP:  get("dstip"),
			FirewallAction: get("action"),
			RawCategory:    get("catdesc"),
			Description:    firstPresent(get("msg"), get("phLogDetail")),
			RawLog:         line,
		},
		URL:           get("url"),
		Hostname:      get("hostname"),
		User:          get("user"),
		SentBytes:     get("sentbyte"),
		ReceivedBytes: get("rcvdbyte"),
		PolicyID:      get("policyid"),
	}
}
