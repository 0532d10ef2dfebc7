// Command heapctl drives and inspects heapkit's compacting heap.
package main

func main() {
	execute()
}
