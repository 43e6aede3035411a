package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <server-ip> <port>\n", os.Args[0])
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := net.JoinHostPort(os.Args[1], os.Args[2])
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		if err := receive(conn, os.Stdout); err != nil {
			log.Println("Read error:", err)
			return
		}
		log.Println("Server closed the connection.")
	}()

	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
	}()

	// Write loop
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			return
		case text, ok := <-input:
			if !ok {
				return
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, err := conn.Write([]byte(text + "\n")); err != nil {
				log.Println("Write error:", err)
				return
			}
			if text == "QUIT" {
				return
			}
		}
	}
}

// receive copies server messages to out until the connection ends. A leading
// "SAY " on a line is dropped.
func receive(r io.Reader, out io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fmt.Fprint(out, strings.TrimPrefix(line, "SAY "))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
