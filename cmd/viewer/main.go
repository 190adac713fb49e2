package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/junsooki/posecast/internal/config"
	"github.com/junsooki/posecast/internal/decoder"
	"github.com/junsooki/posecast/internal/display"
	"github.com/junsooki/posecast/internal/peer"
	"github.com/junsooki/posecast/internal/signaling"
)

func main() {
	cfg, err := config.ParseViewer(os.Args[1:], os.Stderr)
	if err != nil {
		if config.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log.Printf("posecast viewer starting")
	log.Printf("  Viewer ID:  %s", cfg.ViewerID)
	log.Printf("  Signaling:  %s", cfg.SignalingURL)
	log.Printf("  Publisher:  %s", cfg.PublisherID)

	dec := decoder.NewJPEGDecoder()
	disp := display.NewEbitenDisplay(cfg.PublisherID, 1280, 720)

	var viewer *peer.Viewer

	// Signaling.
	var sig *signaling.Client
	sig = signaling.NewClient(cfg.SignalingURL, cfg.ViewerID, signaling.ClientTypeViewer, signaling.Handler{
		OnRegistered: func() {
			log.Println("Registered with signaling server")

			var err error
			viewer, err = peer.NewViewer(sig, cfg.PublisherID)
			if err != nil {
				log.Printf("create viewer peer: %v", err)
				disp.Close()
				return
			}

			viewer.Transport().OnFrame(func(data []byte) {
				img, err := dec.Decode(data)
				if err != nil {
					return
				}
				disp.SetFrame(img)
			})
			viewer.Transport().OnStatus(func(text string) {
				disp.SetTitle(text)
			})

			go func() {
				<-viewer.Done()
				log.Println("Connection to publisher ended")
				disp.Close()
			}()

			if err := viewer.Connect(); err != nil {
				log.Printf("viewer connect: %v", err)
			}
		},
		OnAnswer: func(from string, payload json.RawMessage) {
			if viewer != nil {
				if err := viewer.HandleAnswer(payload); err != nil {
					log.Printf("handle answer: %v", err)
				}
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			if viewer != nil {
				if err := viewer.HandleICECandidate(payload); err != nil {
					log.Printf("handle ICE candidate: %v", err)
				}
			}
		},
		OnPublisherDisconnected: func(publisherID string) {
			if publisherID == cfg.PublisherID {
				log.Printf("Publisher %s disconnected", publisherID)
				disp.Close()
			}
		},
		OnError: func(msg string) {
			log.Printf("signaling error: %s", msg)
		},
	})

	if err := sig.Connect(); err != nil {
		log.Fatalf("signaling connect: %v", err)
	}
	defer sig.Close()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		log.Fatalf("display: %v", err)
	}

	if viewer != nil {
		viewer.Close()
	}
}
