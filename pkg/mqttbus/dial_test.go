package mqttbus

import (
	"net"
	"testing"
	"time"

	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/rs/zerolog"

	"github.com/automatedhome/allyscheduler/pkg/types"
)

// fakeBroker accepts MQTT connections on loopback and hands every CONNECT
// it reads to connects. It answers with returnCode, or not at all when
// silent is set.
type fakeBroker struct {
	ln         net.Listener
	returnCode byte
	silent     bool
	connects   chan *packets.ConnectPacket
}

func startBroker(t *testing.T, returnCode byte, silent bool) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	b := &fakeBroker{ln: ln, returnCode: returnCode, silent: silent, connects: make(chan *packets.ConnectPacket, 4)}
	t.Cleanup(func() { ln.Close() })
	go b.serve()
	return b
}

func (b *fakeBroker) serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.handle(conn)
	}
}

func (b *fakeBroker) handle(conn net.Conn) {
	defer conn.Close()
	for {
		p, err := packets.ReadPacket(conn)
		if err != nil {
			return
		}
		switch p := p.(type) {
		case *packets.ConnectPacket:
			select {
			case b.connects <- p:
			default:
			}
			if b.silent {
				continue
			}
			ack := packets.NewControlPacket(packets.Connack).(*packets.ConnackPacket)
			ack.ReturnCode = b.returnCode
			if err := ack.Write(conn); err != nil || b.returnCode != packets.Accepted {
				return
			}
		case *packets.SubscribePacket:
			ack := packets.NewControlPacket(packets.Suback).(*packets.SubackPacket)
			ack.MessageID = p.MessageID
			ack.ReturnCodes = p.Qoss
			if err := ack.Write(conn); err != nil {
				return
			}
		case *packets.PingreqPacket:
			if err := packets.NewControlPacket(packets.Pingresp).Write(conn); err != nil {
				return
			}
		case *packets.DisconnectPacket:
			return
		}
	}
}

func (b *fakeBroker) config() types.MQTT {
	cfg := testConfig()
	cfg.Broker = b.ln.Addr().String()
	cfg.User, cfg.Password = "test_user", "test_pass"
	cfg.ConnectTimeout = 2 * time.Second
	return cfg
}

func TestDialSendsCredentials(t *testing.T) {
	b := startBroker(t, packets.Accepted, false)
	c, err := Dial(b.config(), types.AllyModel, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	connect := <-b.connects
	if !connect.UsernameFlag || connect.Username != "test_user" {
		t.Errorf("CONNECT username flag=%v username=%q", connect.UsernameFlag, connect.Username)
	}
	if !connect.PasswordFlag || string(connect.Password) != "test_pass" {
		t.Errorf("CONNECT password flag=%v", connect.PasswordFlag)
	}
	if connect.ClientIdentifier != "allyscheduler" {
		t.Errorf("client id = %q", connect.ClientIdentifier)
	}
	if err := c.Connected(); err != nil {
		t.Error(err)
	}
}

func TestDialRefused(t *testing.T) {
	b := startBroker(t, packets.ErrRefusedNotAuthorised, false)
	c, err := Dial(b.config(), types.AllyModel, zerolog.Nop())
	if err == nil {
		c.Close()
		t.Fatal("Dial succeeded against a broker refusing the credentials")
	}
}

func TestDialTimesOut(t *testing.T) {
	b := startBroker(t, packets.Accepted, true)
	cfg := b.config()
	cfg.ConnectTimeout = 200 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := Dial(cfg, types.AllyModel, zerolog.Nop())
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Dial succeeded without a CONNACK")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Dial did not give up on a silent broker")
	}
}

func TestDialBadBrokerAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Broker = "tcp://"
	if _, err := Dial(cfg, types.AllyModel, zerolog.Nop()); err == nil {
		t.Error("Dial accepted a broker address without a host")
	}
}
