package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/colorstring"

	"github.com/synqronlabs/spfscan/dns"
	"github.com/synqronlabs/spfscan/spf"
)

var (
	dohEndpoint = flag.String("doh", "", "resolve over a DNS-over-HTTPS JSON endpoint (e.g. "+dns.DefaultDoHEndpoint+")")
	nameserver  = flag.String("ns", "", "nameserver to query (host:port), default: system resolvers")
	timeout     = flag.Duration("timeout", 30*time.Second, "overall resolution timeout")
	verbose     = flag.Bool("v", false, "enable debug logging")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <domain>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	if *dohEndpoint != "" && *nameserver != "" {
		fmt.Fprintln(os.Stderr, "-doh and -ns are mutually exclusive")
		os.Exit(2)
	}

	var resolver dns.Resolver
	if *dohEndpoint != "" {
		resolver = dns.NewDoHClient(dns.DoHConfig{Endpoint: *dohEndpoint})
	} else {
		var servers []string
		if *nameserver != "" {
			servers = []string{*nameserver}
		}
		resolver = dns.NewClient(dns.ResolverConfig{Nameservers: servers})
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := spf.ResolveRoot(ctx, resolver, spf.Args{
		Domain: flag.Arg(0),
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	render(report)

	switch report.Compliance {
	case spf.CompliancePass, spf.ComplianceWarn:
		os.Exit(0)
	default:
		os.Exit(1)
	}
}

func render(r *spf.Report) {
	colorstring.Println(fmt.Sprintf("[bold]-- SPF audit for %s[reset] (%s)", r.Domain, r.ID))
	fmt.Println()

	if r.Root != nil {
		printNode(r.Root, 0)
		fmt.Println()
	}

	fmt.Printf("DNS lookups:      %d (RFC 7208 allows 10)\n", r.DNSLookups)
	fmt.Printf("Void lookups:     %d (RFC 7208 allows 2)\n", r.VoidLookups)
	fmt.Printf("Unique netblocks: %d (%d IPv4 addresses)\n", r.UniqueNetblocks, r.IPv4Addresses)
	for _, d := range r.DuplicateNetblocks {
		colorstring.Println(fmt.Sprintf("[yellow]duplicate netblock:[reset] %s appears %d times", d.CIDR, d.Count))
	}

	if len(r.Warnings) > 0 || len(r.Errors) > 0 {
		fmt.Println()
	}
	for _, w := range r.Warnings {
		colorstring.Println(fmt.Sprintf("[yellow]warning:[reset] %s", w))
	}
	for _, e := range r.Errors {
		colorstring.Println(fmt.Sprintf("[red]error:[reset] %s", e))
	}

	fmt.Println()
	colorstring.Println(fmt.Sprintf("Verdict: %s%s[reset]", verdictColor(r.Compliance), r.Compliance))
}

func printNode(n *spf.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	colorstring.Println(fmt.Sprintf("%s[bold]%s[reset]  %q", indent, n.Domain, n.Record))
	for _, item := range n.Children {
		switch item := item.(type) {
		case *spf.Node:
			printNode(item, depth+1)
		case spf.Term:
			fmt.Printf("%s  %s\n", indent, item)
		}
	}
}

func verdictColor(c spf.Compliance) string {
	switch c {
	case spf.CompliancePass:
		return "[green]"
	case spf.ComplianceWarn:
		return "[yellow]"
	default:
		return "[red]"
	}
}
