package opcuagw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

const closeTimeout = 5 * time.Second

// Config captures the runtime details required to open a session against an
// OPC UA gateway that fronts the crate.
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SecurityMode    string `yaml:"security_mode"`
	SecurityPolicy  string `yaml:"security_policy"`
	ApplicationName string `yaml:"application_name"`

	// NodeTemplate expands to the node id for one (slot, channel, parameter)
	// triple, e.g. "ns=2;s=HV.Slot%d.Ch%d.%s".
	NodeTemplate string `yaml:"node_template"`
}

func (c *Config) ApplyDefaults() {
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "HV Monitor"
	}
	if c.NodeTemplate == "" {
		c.NodeTemplate = "ns=2;s=HV.Slot%d.Ch%d.%s"
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if strings.Count(c.NodeTemplate, "%") < 3 {
		return fmt.Errorf("node_template %q must reference slot, channel and parameter", c.NodeTemplate)
	}
	return nil
}

// Transport reads channel parameters through an OPC UA gateway. One
// GetChParam call issues exactly one Read service request carrying a node per
// channel, so the request count per poll tick stays at slots × parameters.
type Transport struct {
	cfg    Config
	client *opcua.Client

	mu      sync.Mutex
	nodeIDs map[string]*ua.NodeID
}

func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []opcua.Option{
		opcua.SecurityModeString(normalizeSecurityMode(cfg.SecurityMode)),
		opcua.SecurityPolicy(cfg.SecurityPolicy),
		opcua.ApplicationName(cfg.ApplicationName),
		opcua.AutoReconnect(true),
	}
	if cfg.Username != "" {
		opts = append(opts, opcua.AuthUsername(cfg.Username, cfg.Password))
	} else {
		opts = append(opts, opcua.AuthAnonymous())
	}

	client, err := opcua.NewClient(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("opcua new client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("opcua connect: %w", err)
	}

	return &Transport{
		cfg:     cfg,
		client:  client,
		nodeIDs: make(map[string]*ua.NodeID),
	}, nil
}

func (t *Transport) GetChParam(ctx context.Context, slot int, channels []int, param domain.ParameterKind) ([]float64, error) {
	nodes := make([]*ua.ReadValueID, 0, len(channels))
	for _, ch := range channels {
		id, err := t.nodeID(slot, ch, param)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &ua.ReadValueID{NodeID: id, AttributeID: ua.AttributeIDValue})
	}

	resp, err := t.client.Read(ctx, &ua.ReadRequest{
		NodesToRead:        nodes,
		TimestampsToReturn: ua.TimestampsToReturnNeither,
	})
	if err != nil {
		return nil, fmt.Errorf("opcua read slot %d param %s: %w", slot, param, err)
	}
	if len(resp.Results) != len(channels) {
		return nil, fmt.Errorf("opcua read slot %d param %s: %d results for %d nodes", slot, param, len(resp.Results), len(channels))
	}

	values := make([]float64, len(channels))
	for i, dv := range resp.Results {
		if dv.Status != ua.StatusOK {
			return nil, fmt.Errorf("opcua read slot %d ch %d param %s: status %s", slot, channels[i], param, dv.Status)
		}
		fv, ok := variantToFloat(dv.Value)
		if !ok {
			return nil, fmt.Errorf("opcua read slot %d ch %d param %s: unsupported value type", slot, channels[i], param)
		}
		values[i] = fv
	}
	return values, nil
}

func (t *Transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := t.client.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (t *Transport) nodeID(slot, ch int, param domain.ParameterKind) (*ua.NodeID, error) {
	key := fmt.Sprintf(t.cfg.NodeTemplate, slot, ch, string(param))

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.nodeIDs[key]; ok {
		return id, nil
	}
	id, err := ua.ParseNodeID(key)
	if err != nil {
		return nil, fmt.Errorf("parse node id %q: %w", key, err)
	}
	t.nodeIDs[key] = id
	return id, nil
}

func variantToFloat(v *ua.Variant) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Value().(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int8:
		return float64(val), true
	case uint8:
		return float64(val), true
	case int16:
		return float64(val), true
	case uint16:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

func normalizeSecurityMode(mode string) string {
	switch strings.ToLower(mode) {
	case "sign":
		return "Sign"
	case "signandencrypt", "signencrypt", "sign_and_encrypt", "sign+encrypt":
		return "SignAndEncrypt"
	default:
		return "None"
	}
}

var _ ports.SlotParamReader = (*Transport)(nil)
