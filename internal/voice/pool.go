package voice

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Voice is one synthesized-speech persona. The ID is the synthesis vendor's
// voice identifier; Name is what the agent introduces itself as.
type Voice struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Gender string `json:"gender"`
}

// Regional pools keep the accent plausible for the lead's market. A lead
// region picks its pool; unknown regions use the default pool.
var regionalPools = map[string][]Voice{
	"US": {
		{Name: "James", ID: "Cz0K1kOv9tD8l0b5Qu53", Gender: "male"},
		{Name: "Michael", ID: "kdVjFjOXaqExaDvXZECX", Gender: "male"},
		{Name: "David", ID: "s3TPKV1kjDlVtZbl4Ksh", Gender: "male"},
		{Name: "Daniel", ID: "g6xIsTj2HwM6VR4iXFCw", Gender: "male"},
		{Name: "Matthew", ID: "egTToTzW6GojvddLj0zd", Gender: "male"},
		{Name: "Sarah", ID: "y3UNfL9XC5Bb5htg8B0q", Gender: "female"},
		{Name: "Jennifer", ID: "WtA85syCrJwasGeHGH2p", Gender: "female"},
		{Name: "Emily", ID: "thfYL0Elyru2qqTtNQsE", Gender: "female"},
	},
	"UK": {
		{Name: "Robert", ID: "PoHUWWWMHFrA8z7Q88pu", Gender: "male"},
		{Name: "William", ID: "gJx1vCzNCD1EQHT212Ls", Gender: "male"},
		{Name: "Christopher", ID: "mkrzc6Zmz8alRK0wX5dd", Gender: "male"},
		{Name: "Jessica", ID: "weA4Q36twV5kwSaTEL0Q", Gender: "female"},
		{Name: "Ashley", ID: "JPnpygWDArqL8AVMLMVT", Gender: "female"},
	},
	"AUSTRALIA": {
		{Name: "Thomas", ID: "PIGsltMj3gFMR34aFDI3", Gender: "male"},
		{Name: "Charles", ID: "UgBBYS2sOqTuMpoF3BR0", Gender: "male"},
		{Name: "Andrew", ID: "ZoiZ8fuDWInAcwPXaVeq", Gender: "male"},
		{Name: "Joshua", ID: "NIPHfiR4kB4aHfvaKvYb", Gender: "male"},
		{Name: "Ryan", ID: "w9rPM8AIZle60Nbpw7nl", Gender: "male"},
		{Name: "Amanda", ID: "pPdl9cQBQq4p6mRkZy2Z", Gender: "female"},
		{Name: "Stephanie", ID: "wXEAnFslaqD3RStuH8Qn", Gender: "female"},
		{Name: "Michelle", ID: "9vP6R7VVxNwGIGLnpl17", Gender: "female"},
	},
	"ANZ": {
		{Name: "Thomas", ID: "PIGsltMj3gFMR34aFDI3", Gender: "male"},
		{Name: "Ryan", ID: "w9rPM8AIZle60Nbpw7nl", Gender: "male"},
	},
	"INDIA": {
		{Name: "Roohi", ID: "lx9HCNXE1EkLR0EPKlLY", Gender: "female"},
		{Name: "Payal", ID: "zEoa2AiakhTnKPSlAhoX", Gender: "female"},
		{Name: "Tina", ID: "KrfvGW2D1x6nS5QnRj2q", Gender: "female"},
		{Name: "Aashish", ID: "RpiHVNPKGBg7UmgmrKrN", Gender: "male"},
		{Name: "Sridhar", ID: "4djJiaeiIiFtglUCWGdA", Gender: "male"},
		{Name: "Rahul", ID: "swh0hLPsEaD50F02tIJJ", Gender: "male"},
	},
}

var defaultPool = []Voice{
	{Name: "James", ID: "Cz0K1kOv9tD8l0b5Qu53", Gender: "male"},
	{Name: "Michael", ID: "kdVjFjOXaqExaDvXZECX", Gender: "male"},
	{Name: "David", ID: "s3TPKV1kjDlVtZbl4Ksh", Gender: "male"},
	{Name: "Robert", ID: "PoHUWWWMHFrA8z7Q88pu", Gender: "male"},
	{Name: "William", ID: "gJx1vCzNCD1EQHT212Ls", Gender: "male"},
	{Name: "Thomas", ID: "PIGsltMj3gFMR34aFDI3", Gender: "male"},
	{Name: "Charles", ID: "UgBBYS2sOqTuMpoF3BR0", Gender: "male"},
	{Name: "Daniel", ID: "g6xIsTj2HwM6VR4iXFCw", Gender: "male"},
	{Name: "Matthew", ID: "egTToTzW6GojvddLj0zd", Gender: "male"},
	{Name: "Christopher", ID: "mkrzc6Zmz8alRK0wX5dd", Gender: "male"},
	{Name: "Andrew", ID: "ZoiZ8fuDWInAcwPXaVeq", Gender: "male"},
	{Name: "Joshua", ID: "NIPHfiR4kB4aHfvaKvYb", Gender: "male"},
	{Name: "Ryan", ID: "w9rPM8AIZle60Nbpw7nl", Gender: "male"},
	{Name: "Sarah", ID: "y3UNfL9XC5Bb5htg8B0q", Gender: "female"},
	{Name: "Jennifer", ID: "WtA85syCrJwasGeHGH2p", Gender: "female"},
	{Name: "Emily", ID: "thfYL0Elyru2qqTtNQsE", Gender: "female"},
	{Name: "Jessica", ID: "weA4Q36twV5kwSaTEL0Q", Gender: "female"},
	{Name: "Ashley", ID: "JPnpygWDArqL8AVMLMVT", Gender: "female"},
	{Name: "Amanda", ID: "pPdl9cQBQq4p6mRkZy2Z", Gender: "female"},
	{Name: "Stephanie", ID: "wXEAnFslaqD3RStuH8Qn", Gender: "female"},
	{Name: "Michelle", ID: "9vP6R7VVxNwGIGLnpl17", Gender: "female"},
}

// Picker selects personas. Selection starts at a random offset per pool and
// rotates from there, so repeated dials in one campaign vary the persona
// while still cycling through the whole pool.
type Picker struct {
	mu      sync.Mutex
	cursors map[string]int
}

func NewPicker() *Picker {
	return &Picker{cursors: make(map[string]int)}
}

// ByRegion returns the next voice for a lead's region, falling back to the
// default pool when the region is unknown or empty.
func (p *Picker) ByRegion(region string) Voice {
	key := normalizeRegion(region)
	pool, ok := regionalPools[key]
	if !ok || len(pool) == 0 {
		key = "DEFAULT"
		pool = defaultPool
	}
	return p.next(key, pool)
}

// Random draws from the default pool.
func (p *Picker) Random() Voice {
	return p.next("DEFAULT", defaultPool)
}

func (p *Picker) next(key string, pool []Voice) Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.cursors[key]
	if !ok {
		cur = rand.IntN(len(pool))
	}
	v := pool[cur%len(pool)]
	p.cursors[key] = (cur + 1) % len(pool)
	return v
}

func normalizeRegion(region string) string {
	switch strings.ToUpper(strings.TrimSpace(region)) {
	case "US", "USA", "UNITED STATES", "UNITED STATES OF AMERICA":
		return "US"
	case "UK", "UNITED KINGDOM", "GB", "GREAT BRITAIN", "ENGLAND":
		return "UK"
	case "IN", "INDIA":
		return "INDIA"
	case "AU", "AUSTRALIA":
		return "AUSTRALIA"
	case "NZ", "NEW ZEALAND", "ANZ":
		return "ANZ"
	default:
		return strings.ToUpper(strings.TrimSpace(region))
	}
}
