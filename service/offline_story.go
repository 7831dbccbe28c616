package service

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"storybook-server/models"
)

// 采样参数固定，与上游层一致
const (
	offlineTemperature = 0.9
	offlineTopP        = 0.9
)

// OfflineComposer 内置的最终回退层：进程内组句采样，永远可用。
// 上两层全部失败时由它保证 StoryGenerator 仍有非空多段产出。
type OfflineComposer struct {
	rng *rand.Rand
}

func NewOfflineComposer() *OfflineComposer {
	return &OfflineComposer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type weighted struct {
	text   string
	weight float64
}

// sample 温度 + top-p 截断后按权重抽取一条
func (c *OfflineComposer) sample(cands []weighted) string {
	scored := make([]weighted, len(cands))
	total := 0.0
	for i, cand := range cands {
		w := math.Pow(cand.weight, 1.0/offlineTemperature)
		scored[i] = weighted{cand.text, w}
		total += w
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].weight > scored[j].weight })

	kept := scored[:0]
	cum := 0.0
	for _, s := range scored {
		kept = append(kept, s)
		cum += s.weight / total
		if cum >= offlineTopP {
			break
		}
	}
	sum := 0.0
	for _, k := range kept {
		sum += k.weight
	}
	r := c.rng.Float64() * sum
	for _, k := range kept {
		r -= k.weight
		if r <= 0 {
			return k.text
		}
	}
	return kept[len(kept)-1].text
}

var heroNames = []weighted{
	{"Milo", 1.0}, {"Luna", 1.0}, {"Pip", 0.9}, {"Rosie", 0.9}, {"Finn", 0.8}, {"Maya", 0.8},
}

var openings = []weighted{
	{"Once upon a time, %s found something wonderful: %s.", 1.0},
	{"In a little town at the edge of a green forest, %s discovered %s.", 0.9},
	{"One quiet morning, %s woke up and thought about %s.", 0.8},
}

var middles = map[string][]weighted{
	models.TonePositive: {
		{"%s laughed and set off at once, hopping over puddles that sparkled like stars.", 1.0},
		{"Every friend %s met wanted to help, and soon a happy parade followed along.", 0.9},
		{"The sun seemed to shine brighter with every step %s took.", 0.8},
		{"A friendly bluebird swooped down and sang a cheerful song just for %s.", 0.8},
	},
	models.ToneNegative: {
		{"%s felt a little unsure at first, but took a deep breath and kept going.", 1.0},
		{"The path grew shadowy, yet %s remembered that shadows are only resting light.", 0.9},
		{"A gentle old turtle told %s that even gray clouds carry the rain flowers need.", 0.8},
		{"Step by step, the worry in %s's chest grew smaller and softer.", 0.8},
	},
	models.ToneNeutral: {
		{"%s wondered what would happen next, and decided to find out.", 1.0},
		{"Along the way, %s noticed small things: a snail's shiny trail, a leaf shaped like a heart.", 0.9},
		{"A curious fox walked beside %s for a while, asking quiet questions.", 0.8},
		{"%s kept a little notebook and drew everything worth remembering.", 0.8},
	},
}

var endings = []weighted{
	{"That night, %s fell asleep smiling, because sharing a day makes it twice as bright.", 1.0},
	{"And %s learned that small kindnesses grow into the biggest adventures.", 0.9},
	{"From then on, %s knew that being curious and gentle opens every door.", 0.8},
}

// Compose 保证返回非空的多段故事文本
func (c *OfflineComposer) Compose(seed, tone string) string {
	hero := c.sample(heroNames)
	bank, ok := middles[tone]
	if !ok {
		bank = middles[models.ToneNeutral]
	}

	subject := strings.TrimSpace(seed)
	if subject == "" {
		subject = "a small mystery waiting to be explored"
	}

	var paras []string
	paras = append(paras, fmt.Sprintf(c.sample(openings), hero, subject))

	// 4-6 个中段
	n := 4 + c.rng.Intn(3)
	for i := 0; i < n; i++ {
		line := c.sample(bank)
		if strings.Contains(line, "%s") {
			line = fmt.Sprintf(line, hero)
		}
		paras = append(paras, line)
	}
	paras = append(paras, fmt.Sprintf(c.sample(endings), hero))
	return strings.Join(paras, "\n\n")
}
