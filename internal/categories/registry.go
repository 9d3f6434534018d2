package categories

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Category is one entry of the AbuseIPDB category taxonomy.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Category IDs as published at https://www.abuseipdb.com/categories
const (
	DNSCompromise = 1
	DNSPoisoning  = 2
	FraudOrders   = 3
	DDoSAttack    = 4
	FTPBruteForce = 5
	PingOfDeath   = 6
	Phishing      = 7
	FraudVoIP     = 8
	OpenProxy     = 9
	WebSpam       = 10
	EmailSpam     = 11
	BlogSpam      = 12
	VPNIP         = 13
	PortScan      = 14
	Hacking       = 15
	SQLInjection  = 16
	Spoofing      = 17
	BruteForce    = 18
	BadWebBot     = 19
	ExploitedHost = 20
	WebAppAttack  = 21
	SSH           = 22
	IoTTargeted   = 23
)

var names = map[int]string{
	DNSCompromise: "dns-compromise",
	DNSPoisoning:  "dns-poisoning",
	FraudOrders:   "fraud-orders",
	DDoSAttack:    "ddos-attack",
	FTPBruteForce: "ftp-brute-force",
	PingOfDeath:   "ping-of-death",
	Phishing:      "phishing",
	FraudVoIP:     "fraud-voip",
	OpenProxy:     "open-proxy",
	WebSpam:       "web-spam",
	EmailSpam:     "email-spam",
	BlogSpam:      "blog-spam",
	VPNIP:         "vpn-ip",
	PortScan:      "port-scan",
	Hacking:       "hacking",
	SQLInjection:  "sql-injection",
	Spoofing:      "spoofing",
	BruteForce:    "brute-force",
	BadWebBot:     "bad-web-bot",
	ExploitedHost: "exploited-host",
	WebAppAttack:  "web-app-attack",
	SSH:           "ssh",
	IoTTargeted:   "iot-targeted",
}

// Short forms accepted in addition to the canonical names.
var aliases = map[string]int{
	"bruteforce":    BruteForce,
	"brute":         BruteForce,
	"ddos":          DDoSAttack,
	"ftpbruteforce": FTPBruteForce,
	"ftpbrute":      FTPBruteForce,
	"ioittargeted":  IoTTargeted,
	"iot":           IoTTargeted,
	"pingdeath":     PingOfDeath,
	"voipfraud":     FraudVoIP,
	"vpn":           VPNIP,
	"sqli":          SQLInjection,
	"websqli":       SQLInjection,
}

var (
	// lookup holds canonical names and aliases; canonical names win on collision.
	lookup map[string]int
	// compacted is keyed by lookup keys with hyphens and spaces removed.
	compacted map[string]int
)

func init() {
	lookup = make(map[string]int, len(names)+len(aliases))
	compacted = make(map[string]int, len(names)+len(aliases))

	for alias, id := range aliases {
		if _, ok := names[id]; !ok {
			panic(fmt.Sprintf("categories: alias %q points to unknown id %d", alias, id))
		}
		lookup[alias] = id
	}
	for id, name := range names {
		lookup[name] = id
	}
	for key, id := range lookup {
		c := compact(key)
		if prev, ok := compacted[c]; ok && prev != id {
			panic(fmt.Sprintf("categories: %q is ambiguous between ids %d and %d", c, prev, id))
		}
		compacted[c] = id
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func compact(name string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(name)
}

// ResolveName converts a human-readable category name or alias to its ID.
// The trimmed, lowercased name is tried as is, then without hyphens, then
// without spaces, and finally against the compacted table so that "port scan"
// and "PortScan" both reach port-scan.
func ResolveName(name string) (int, bool) {
	normalized := normalize(name)
	if normalized == "" {
		return 0, false
	}

	for _, v := range []string{
		normalized,
		strings.ReplaceAll(normalized, "-", ""),
		strings.ReplaceAll(normalized, " ", ""),
	} {
		if id, ok := lookup[v]; ok {
			return id, true
		}
	}

	id, ok := compacted[compact(normalized)]
	return id, ok
}

// ResolveID returns the canonical name for id.
func ResolveID(id int) (string, bool) {
	name, ok := names[id]
	return name, ok
}

// Exists reports whether id is part of the taxonomy.
func Exists(id int) bool {
	_, ok := names[id]
	return ok
}

// ValidateBatch resolves every name. Resolved IDs keep the input order of the
// names that resolved; names that did not resolve are returned unchanged.
func ValidateBatch(categoryNames []string) (bool, []int, []string) {
	ids := make([]int, 0, len(categoryNames))
	var unresolved []string

	for _, name := range categoryNames {
		id, ok := ResolveName(name)
		if !ok {
			unresolved = append(unresolved, name)
			continue
		}
		ids = append(ids, id)
	}

	return len(unresolved) == 0, ids, unresolved
}

// All returns every category ordered by ID.
func All() []Category {
	all := make([]Category, 0, len(names))
	for id, name := range names {
		all = append(all, Category{ID: id, Name: name})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Names returns the canonical names for ids, skipping unknown IDs.
func Names(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// SplitNames splits a comma-separated list and drops empty entries.
func SplitNames(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SplitList splits a comma-separated list that may mix names and numeric IDs.
// Known IDs are replaced by their canonical names; everything else is kept
// as typed so that validation can report it.
func SplitList(csv string) []string {
	parts := SplitNames(csv)
	for i, part := range parts {
		if id, err := strconv.Atoi(part); err == nil {
			if name, ok := names[id]; ok {
				parts[i] = name
			}
		}
	}
	return parts
}

// ParseIDs parses a comma-separated list of numeric IDs such as "18,22".
// IDs that are numbers but not in the taxonomy are returned as unknown.
func ParseIDs(csv string) ([]int, []int, error) {
	parts := SplitNames(csv)
	if len(parts) == 0 {
		return nil, nil, fmt.Errorf("no category IDs given")
	}

	var ids, unknown []int
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, nil, fmt.Errorf("category IDs must be numbers separated by commas (e.g., 18,22): %q", part)
		}
		if !Exists(id) {
			unknown = append(unknown, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unknown, nil
}
