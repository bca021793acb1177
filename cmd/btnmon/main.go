package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/btnlink/pkg/comm/mqtt"
	fx "github.com/robotalks/btnlink/pkg/framework"
	"github.com/robotalks/btnlink/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
)

func init() {
	if val := os.Getenv("BTNLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}

	sub := q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, msg, err := msgs.DecodeMessage(payload)
		if err != nil {
			if typed != nil {
				log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			} else {
				log.Printf("%s: bad message: %v", topic, err)
			}
			return
		}
		log.Printf("%s: [%T] %s", topic, msg, msg.String())
	}))
	err = fx.NewRunner().HandleSignals().Go(fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		sub.Close()
		q.Close()
		return ctx.Err()
	})).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
